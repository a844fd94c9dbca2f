package system

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/julianstephens/lifeos/internal/backup"
	"github.com/julianstephens/lifeos/internal/cli"
	"github.com/julianstephens/lifeos/internal/config"
	"github.com/julianstephens/lifeos/internal/constants"
	"github.com/julianstephens/lifeos/internal/keyring"
	"github.com/julianstephens/lifeos/internal/notifier"
	"github.com/julianstephens/lifeos/internal/storage"
	"github.com/julianstephens/lifeos/internal/todos"
	"github.com/julianstephens/lifeos/internal/utils"
)

type DoctorCmd struct{}

// check is one diagnostic. Warnings never fail the run; needsStore checks
// are skipped when the store cannot be loaded.
type check struct {
	name       string
	run        func(ctx *cli.Context) error
	warning    bool
	needsStore bool
}

var doctorChecks = []check{
	{name: "Configuration", run: checkConfig},
	{name: "Storage reachable", run: checkStoreReachable},
	{name: "Schema migrations", run: checkMigrations, needsStore: true},
	{name: "Sheets readable", run: checkSheets, needsStore: true},
	{name: "Todo records", run: checkTodoRecords, needsStore: true},
	{name: "Habit records", run: checkHabitRecords, needsStore: true},
	{name: "Backups present", run: checkBackupsPresent, warning: true},
	{name: "Clock/timezone", run: checkClockTimezone},
	{name: "Channel routing", run: checkChannels},
	{name: "Webhooks", run: checkWebhooks, warning: true},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false
	storeOK := true
	for _, c := range doctorChecks {
		if c.needsStore && !storeOK {
			ctx.Printf("⊘ %s: SKIPPED (storage not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
		case c.warning:
			ctx.Printf("⚠ %s: WARNING\n", c.name)
			ctx.Printf("   %v\n", err)
		default:
			ctx.Printf("❌ %s: FAIL\n", c.name)
			ctx.Printf("   Error: %v\n", err)
			hasError = true
		}
		if c.name == "Storage reachable" && err != nil {
			storeOK = false
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	ctx.Println("All diagnostics passed!")
	return nil
}

func checkConfig(ctx *cli.Context) error {
	return ctx.Config.Validate()
}

func checkStoreReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load storage: %w", err)
	}
	return nil
}

func checkSheets(ctx *cli.Context) error {
	bg := context.Background()
	for _, s := range sheets {
		table, err := ctx.Store.Table(bg, s.name, s.header)
		if err != nil {
			return fmt.Errorf("failed to open %s sheet: %w", s.name, err)
		}
		all, err := table.GetAll(bg)
		if err != nil {
			return fmt.Errorf("failed to read %s sheet: %w", s.name, err)
		}
		if len(all) == 0 || !slices.Equal(all[0], s.header) {
			return fmt.Errorf("%s sheet header is %v, want %v", s.name, first(all), s.header)
		}
	}
	return nil
}

func first(rows [][]string) []string {
	if len(rows) == 0 {
		return nil
	}
	return rows[0]
}

func checkTodoRecords(ctx *cli.Context) error {
	rows, err := dataRows(ctx, constants.SheetTodos, constants.TodoHeader)
	if err != nil {
		return err
	}
	var errs []error
	ids := map[int]storage.RowID{}
	for _, row := range rows {
		t, err := todos.Decode(row.Fields)
		if err != nil {
			errs = append(errs, fmt.Errorf("row %d: %w", row.ID, err))
			continue
		}
		if prev, ok := ids[t.ID]; ok {
			errs = append(errs, fmt.Errorf("rows %d and %d share todo id %d", prev, row.ID, t.ID))
		}
		ids[t.ID] = row.ID
	}
	return errors.Join(errs...)
}

func checkHabitRecords(ctx *cli.Context) error {
	rows, err := dataRows(ctx, constants.SheetHabits, constants.HabitHeader)
	if err != nil {
		return err
	}
	var errs []error
	seen := map[string]storage.RowID{}
	for _, row := range rows {
		date, habit := row.Field(0), row.Field(1)
		if _, err := time.Parse(constants.DateFormat, date); err != nil {
			errs = append(errs, fmt.Errorf("row %d: invalid date %q", row.ID, date))
			continue
		}
		key := date + "/" + habit
		if prev, ok := seen[key]; ok {
			errs = append(errs, fmt.Errorf("rows %d and %d both record %s on %s", prev, row.ID, habit, date))
		}
		seen[key] = row.ID
	}
	return errors.Join(errs...)
}

func dataRows(ctx *cli.Context, name string, header []string) ([]storage.Row, error) {
	table, err := ctx.Store.Table(context.Background(), name, header)
	if err != nil {
		return nil, err
	}
	return table.Find(context.Background(), storage.All)
}

func checkBackupsPresent(ctx *cli.Context) error {
	if ctx.Config.Storage.Backend == config.BackendPostgres {
		return fmt.Errorf("backups are managed by the PostgreSQL server")
	}
	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	list, err := mgr.List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(list) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'lifeos backup create'")
	}
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	now := ctx.Config.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	if _, err := utils.LoadLocation(ctx.Config.Timezone); err != nil {
		return err
	}
	return nil
}

func checkChannels(ctx *cli.Context) error {
	router := notifier.NewRouter(ctx.Config.Destinations, nil)
	roles := ctx.Config.Channels.Roles()
	keys := make([]string, 0, len(roles))
	for k := range roles {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var errs []error
	for _, k := range keys {
		if _, err := router.Resolve(roles[k]); err != nil {
			errs = append(errs, fmt.Errorf("channels.%s: %w", k, err))
		}
	}
	for _, p := range ctx.Config.Projects {
		if p.Channel == "" {
			continue
		}
		if _, err := router.Resolve(p.Channel); err != nil {
			errs = append(errs, fmt.Errorf("project %s: %w", p.ID, err))
		}
	}
	return errors.Join(errs...)
}

func checkWebhooks(ctx *cli.Context) error {
	if !slices.Contains(ctx.Config.Notify.Transports, config.TransportWebhook) {
		return nil
	}
	if !keyring.IsAvailable() {
		return fmt.Errorf("OS keyring is not available; webhooks must be set in the config")
	}
	var missing []string
	for _, d := range ctx.Config.Destinations {
		if d.Webhook == "" && !hasWebhookSecret(d.ID, d.Name) {
			missing = append(missing, d.Name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("no webhook for %v - store one with 'lifeos secret webhook'", missing)
	}
	return nil
}
