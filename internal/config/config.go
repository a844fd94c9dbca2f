// Package config loads the lifeos configuration snapshot.
//
// Values are resolved in order: built-in defaults, then the TOML file, then
// LIFEOS_* environment variables (including any loaded from .env files).
// A Snapshot is never mutated after Load returns; Reload produces a new one.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/julianstephens/lifeos/internal/constants"
	"github.com/julianstephens/lifeos/internal/models"
	"github.com/julianstephens/lifeos/internal/notifier"
	"github.com/julianstephens/lifeos/internal/utils"
)

const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendJSON     = "json"
)

const (
	TransportLog     = "log"
	TransportWebhook = "webhook"
	TransportTray    = "tray"
)

// Storage selects the record store backend.
type Storage struct {
	Backend string `toml:"backend"`
	// Path is the SQLite or JSON file. Postgres reads its connection string
	// from the keyring.
	Path string `toml:"path"`
}

// Channels maps each bot role to a destination id or name.
type Channels struct {
	Checkin  string `toml:"checkin"`
	HabitLog string `toml:"habit-log"`
	Weekly   string `toml:"weekly"`
	Monthly  string `toml:"monthly"`
	Todo     string `toml:"todo"`
	Done     string `toml:"done"`
	Calendar string `toml:"calendar"`
}

// Calendars holds calendar identifiers. Professional is optional.
type Calendars struct {
	Personal     string `toml:"personal"`
	Professional string `toml:"professional"`
}

// Schedule holds the local times (HH:MM) jobs fire at.
type Schedule struct {
	Checkin           string `toml:"checkin"`
	TodoOffsetMinutes int    `toml:"todo-offset-minutes"`
	Reset             string `toml:"reset"`
	Calendar          string `toml:"calendar"`
}

type Web struct {
	Addr string `toml:"addr"`
}

type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // text, json or logfmt
}

// Notify lists the transports used to deliver messages: "log", "webhook"
// and "tray".
type Notify struct {
	Transports []string `toml:"transports"`
}

// Snapshot is an immutable view of the configuration.
type Snapshot struct {
	Timezone     string                 `toml:"timezone"`
	Storage      Storage                `toml:"storage"`
	Habits       []models.Habit         `toml:"habits"`
	Projects     []models.Project       `toml:"projects"`
	Destinations []notifier.Destination `toml:"destinations"`
	Channels     Channels               `toml:"channels"`
	Calendars    Calendars              `toml:"calendars"`
	Schedule     Schedule               `toml:"schedule"`
	Web          Web                    `toml:"web"`
	Log          Log                    `toml:"log"`
	Notify       Notify                 `toml:"notify"`

	path string
	dir  string
	loc  *time.Location
}

// Defaults returns the built-in configuration.
func Defaults() *Snapshot {
	s := &Snapshot{
		Timezone: constants.DefaultTimezone,
		Storage:  Storage{Backend: BackendSQLite},
		Habits: []models.Habit{
			{Emoji: "🚶‍♂️", Name: "walk", Label: "Morning walk + water"},
			{Emoji: "🪥", Name: "teeth", Label: "Brush teeth"},
			{Emoji: "🍳", Name: "cook", Label: "Cooked a meal today"},
		},
		Channels: Channels{
			Checkin:  constants.DestCheckin,
			HabitLog: constants.DestHabitLog,
			Weekly:   constants.DestWeekly,
			Monthly:  constants.DestMonthly,
			Todo:     constants.DestTodo,
			Done:     constants.DestDone,
			Calendar: constants.DestCalendar,
		},
		Calendars: Calendars{Personal: constants.DefaultPersonalCalendarID},
		Schedule: Schedule{
			Checkin:  constants.DefaultCheckinTime,
			Reset:    constants.DefaultResetTime,
			Calendar: constants.DefaultCalendarTime,
		},
		Web:    Web{Addr: constants.DefaultListenAddr},
		Notify: Notify{Transports: []string{TransportLog}},
	}
	s.Destinations = s.defaultDestinations()
	return s
}

// Roles maps each channel key to the destination it posts to.
func (c Channels) Roles() map[string]string {
	return map[string]string{
		"checkin":   c.Checkin,
		"habit-log": c.HabitLog,
		"weekly":    c.Weekly,
		"monthly":   c.Monthly,
		"todo":      c.Todo,
		"done":      c.Done,
		"calendar":  c.Calendar,
	}
}

func (c Channels) names() []string {
	return []string{c.Checkin, c.HabitLog, c.Weekly, c.Monthly, c.Todo, c.Done, c.Calendar}
}

// defaultDestinations names one destination per channel and project channel.
func (s *Snapshot) defaultDestinations() []notifier.Destination {
	names := s.Channels.names()
	for _, p := range s.Projects {
		if p.Channel != "" {
			names = append(names, p.Channel)
		}
	}

	var dests []notifier.Destination
	seen := map[string]bool{}
	for _, name := range names {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		dests = append(dests, notifier.Destination{Name: name})
	}
	return dests
}

// DefaultPath returns the configuration file path, honoring LIFEOS_CONFIG.
func DefaultPath() (string, error) {
	if p := os.Getenv(constants.EnvConfigFile); p != "" {
		return p, nil
	}
	dir, err := ExpandHome(constants.DefaultConfigDir)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.DefaultConfigFile), nil
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// LoadEnv loads .env files into the process environment without overriding
// variables that are already set. Missing files are ignored.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads the snapshot from path. An empty path means DefaultPath. A
// missing file yields the defaults.
func Load(path string) (*Snapshot, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	s := Defaults()
	meta, err := toml.DecodeFile(path, s)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	default:
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("parse config file %s: unknown key %q", path, undecoded[0].String())
		}
		if !meta.IsDefined("destinations") {
			s.Destinations = s.defaultDestinations()
		}
	}

	if err := s.applyEnv(); err != nil {
		return nil, err
	}

	s.path = path
	s.dir = filepath.Dir(path)
	switch {
	case s.Storage.Backend == BackendPostgres:
	case s.Storage.Path == "":
		s.Storage.Path = filepath.Join(s.dir, defaultStoreFile(s.Storage.Backend))
	default:
		p, err := ExpandHome(s.Storage.Path)
		if err != nil {
			return nil, err
		}
		s.Storage.Path = p
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	loc, err := utils.LoadLocation(s.Timezone)
	if err != nil {
		return nil, err
	}
	s.loc = loc
	return s, nil
}

// Reload reads the snapshot's file again and returns a new snapshot.
func (s *Snapshot) Reload() (*Snapshot, error) {
	return Load(s.path)
}

func defaultStoreFile(backend string) string {
	if backend == BackendJSON {
		return constants.DefaultJSONFile
	}
	return constants.DefaultDBFile
}

func (s *Snapshot) applyEnv() error {
	setString(&s.Timezone, constants.EnvTimezone)
	setString(&s.Storage.Backend, constants.EnvStorageBackend)
	setString(&s.Storage.Path, constants.EnvStoragePath)
	setString(&s.Calendars.Personal, constants.EnvPersonalCalendar, constants.LegacyPersonalCalEnv)
	setString(&s.Calendars.Professional, constants.EnvProfessionalCal, constants.LegacyProfessionalEnv)
	setString(&s.Schedule.Checkin, constants.EnvCheckinTime)
	setString(&s.Schedule.Reset, constants.EnvResetTime)
	setString(&s.Schedule.Calendar, constants.EnvCalendarTime)
	setString(&s.Web.Addr, constants.EnvWebAddr)
	setString(&s.Log.Level, constants.EnvLogLevel)
	setString(&s.Log.Format, constants.EnvLogFormat)

	if v := os.Getenv(constants.EnvTodoOffsetMinutes); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", constants.EnvTodoOffsetMinutes, err)
		}
		s.Schedule.TodoOffsetMinutes = n
	}
	if v := os.Getenv(constants.EnvNotifyTransports); v != "" {
		var transports []string
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				transports = append(transports, strings.ToLower(t))
			}
		}
		s.Notify.Transports = transports
	}
	return nil
}

// setString overwrites dst with the first non-empty variable.
func setString(dst *string, keys ...string) {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			*dst = v
			return
		}
	}
}

// Validate checks the snapshot for values the bot cannot run with.
func (s *Snapshot) Validate() error {
	var errs []error

	if !utils.ValidateTimezone(s.Timezone) {
		errs = append(errs, fmt.Errorf("invalid timezone %q", s.Timezone))
	}

	switch s.Storage.Backend {
	case BackendSQLite, BackendPostgres, BackendJSON:
	default:
		errs = append(errs, fmt.Errorf("unknown storage backend %q", s.Storage.Backend))
	}

	for name, v := range map[string]string{"checkin": s.Schedule.Checkin, "reset": s.Schedule.Reset, "calendar": s.Schedule.Calendar} {
		if !utils.ValidateTimeFormat(v) {
			errs = append(errs, fmt.Errorf("schedule.%s: invalid time %q (want HH:MM)", name, v))
		}
	}
	if s.Schedule.TodoOffsetMinutes < 0 {
		errs = append(errs, errors.New("schedule.todo-offset-minutes cannot be negative"))
	}

	emojis := map[string]bool{}
	names := map[string]bool{}
	for _, h := range s.Habits {
		if h.Emoji == "" || h.Name == "" {
			errs = append(errs, errors.New("habits need both an emoji and a name"))
			continue
		}
		if emojis[h.Emoji] {
			errs = append(errs, fmt.Errorf("duplicate habit emoji %s", h.Emoji))
		}
		if names[h.Name] {
			errs = append(errs, fmt.Errorf("duplicate habit %q", h.Name))
		}
		emojis[h.Emoji], names[h.Name] = true, true
	}

	projects := map[string]bool{}
	for _, p := range s.Projects {
		if p.ID == "" {
			errs = append(errs, fmt.Errorf("project %q has no id", p.Name))
			continue
		}
		if projects[p.ID] {
			errs = append(errs, fmt.Errorf("duplicate project id %q", p.ID))
		}
		projects[p.ID] = true
	}

	for _, d := range s.Destinations {
		if d.ID == "" && d.Name == "" {
			errs = append(errs, errors.New("destinations need an id or a name"))
		}
	}

	for _, t := range s.Notify.Transports {
		switch t {
		case TransportLog, TransportWebhook, TransportTray:
		default:
			errs = append(errs, fmt.Errorf("unknown notify transport %q", t))
		}
	}

	return errors.Join(errs...)
}

// Path returns the file the snapshot was loaded from.
func (s *Snapshot) Path() string { return s.path }

// Dir returns the configuration directory.
func (s *Snapshot) Dir() string { return s.dir }

// Location returns the snapshot's time zone.
func (s *Snapshot) Location() *time.Location {
	if s.loc == nil {
		return time.Local
	}
	return s.loc
}

// Now returns the current time in the snapshot's time zone.
func (s *Snapshot) Now() time.Time {
	return time.Now().In(s.Location())
}

// HabitByEmoji returns the habit checked off with emoji.
func (s *Snapshot) HabitByEmoji(emoji string) (models.Habit, bool) {
	for _, h := range s.Habits {
		if h.Emoji == emoji {
			return h, true
		}
	}
	return models.Habit{}, false
}

// Project resolves a project by id, then by case-insensitive name.
func (s *Snapshot) Project(key string) (models.Project, bool) {
	key = strings.TrimSpace(key)
	for _, p := range s.Projects {
		if p.ID == key {
			return p, true
		}
	}
	for _, p := range s.Projects {
		if strings.EqualFold(p.Name, key) {
			return p, true
		}
	}
	return models.Project{}, false
}

// Write saves the snapshot as TOML, creating parent directories.
func (s *Snapshot) Write(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(s); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode config: %w", err)
	}
	return f.Close()
}
