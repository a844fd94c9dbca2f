package main

import (
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/lifeos/internal/cli"
	"github.com/julianstephens/lifeos/internal/cli/backups"
	"github.com/julianstephens/lifeos/internal/cli/system"
	"github.com/julianstephens/lifeos/internal/config"
	"github.com/julianstephens/lifeos/internal/constants"
	lerrors "github.com/julianstephens/lifeos/internal/errors"
	"github.com/julianstephens/lifeos/internal/logger"
	"github.com/julianstephens/lifeos/internal/storage"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Config file path. Defaults to $LIFEOS_CONFIG or ~/.config/lifeos/lifeos.toml." type:"path"`
	Debug   bool   `help:"Log at debug level and mirror logs to stderr."`

	Init    system.InitCmd    `cmd:"" help:"Write the default config and initialize storage."`
	Migrate system.MigrateCmd `cmd:"" help:"Run database migrations."`
	Doctor  system.DoctorCmd  `cmd:"" help:"Run health checks and diagnostics."`
	Serve   system.ServeCmd   `cmd:"" help:"Run the bot: scheduled jobs and the HTTP API."`
	Todo    cli.TodoCmd       `cmd:"" help:"Manage todos."`
	Habit   cli.HabitCmd      `cmd:"" help:"Track habits."`
	Event   cli.EventCmd      `cmd:"" help:"Manage calendar events."`
	Ticket  cli.TicketCmd     `cmd:"" help:"Manage project tickets."`
	Project cli.ProjectCmd    `cmd:"" help:"Show configured projects."`
	Backup  backups.BackupCmd `cmd:"" help:"Manage local store backups."`
	Secret  system.SecretCmd  `cmd:"" help:"Manage secrets in the OS keyring."`
	Notify  system.NotifyCmd  `cmd:"" help:"Send a message to a destination."`
}

// storeless commands run without opening the record store.
var storeless = []string{"secret", "notify", "project"}

// unloaded commands open the store but load (or initialize) it themselves.
var unloaded = []string{"init", "doctor"}

func selected(command string, names []string) bool {
	first, _, _ := strings.Cut(command, " ")
	for _, n := range names {
		if first == n {
			return true
		}
	}
	return false
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Personal life OS: todos, habits, tickets and calendar through chat"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)
	command := ctx.Command()

	if err := config.LoadEnv(); err != nil {
		lerrors.Fatal(err)
	}
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		lerrors.Fatal(err)
	}

	if err := logger.Init(logger.Config{
		Debug:     CLI.Debug,
		Level:     cfg.Log.Level,
		Format:    cfg.Log.Format,
		ConfigDir: cfg.Dir(),
		Stderr:    selected(command, []string{"serve"}),
	}); err != nil {
		lerrors.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Close()
	logger.Debug("Starting", "command", command, "config", cfg.Path(), "backend", cfg.Storage.Backend, "log", logger.Path())

	appCtx := &cli.Context{Config: cfg}
	if !selected(command, storeless) {
		var store storage.Provider
		store, err = cli.OpenStore(cfg)
		if err != nil {
			lerrors.Fatal(err)
		}
		defer store.Close()

		if !selected(command, unloaded) {
			if err := store.Load(); err != nil {
				lerrors.Fatal(err)
			}
		}
		appCtx.Store = store
	}

	if err := ctx.Run(appCtx); err != nil {
		if appCtx.Store != nil {
			appCtx.Store.Close()
		}
		lerrors.Fatal(err)
	}
}
