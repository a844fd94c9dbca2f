package system

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/julianstephens/lifeos/internal/bot"
	"github.com/julianstephens/lifeos/internal/cli"
	"github.com/julianstephens/lifeos/internal/constants"
	"github.com/julianstephens/lifeos/internal/logger"
	"github.com/julianstephens/lifeos/internal/scheduler"
	"github.com/julianstephens/lifeos/internal/web"
)

type ServeCmd struct {
	NoWeb  bool   `help:"Do not start the HTTP API."`
	Addr   string `help:"Override the HTTP listen address from the config."`
	NoJobs bool   `help:"Do not run scheduled jobs."`
}

// runtime is everything serve rebuilds on a config reload.
type runtime struct {
	services *bot.Services
	jobs     []scheduler.Job
}

func build(ctx context.Context, c *cli.Context, reminders *scheduler.Window) (*runtime, error) {
	sink, err := cli.NewSink(c.Config, c.Stdout())
	if err != nil {
		return nil, err
	}
	services, err := c.Services(ctx, sink)
	if err != nil {
		return nil, err
	}
	jobs := scheduler.Jobs(scheduler.Deps{
		Config:    services.Config,
		Habits:    services.Habits,
		Todos:     services.Todos,
		Calendar:  services.Calendar,
		Sink:      sink,
		Reminders: reminders,
	})
	return &runtime{services: services, jobs: jobs}, nil
}

func (c *ServeCmd) Run(ctx *cli.Context) error {
	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reminders := scheduler.NewWindow(constants.ReminderWindowHorizon)
	rt, err := build(sigCtx, ctx, reminders)
	if err != nil {
		return err
	}

	b := bot.New(rt.services)
	sched := scheduler.New(rt.jobs, ctx.Config.Now)

	runCtx, cancel := context.WithCancel(sigCtx)
	defer cancel()

	errc := make(chan error, 2)
	workers := 0
	if !c.NoJobs {
		workers++
		go func() { errc <- sched.Run(runCtx) }()
	}
	if !c.NoWeb {
		addr := c.Addr
		if addr == "" {
			addr = ctx.Config.Web.Addr
		}
		srv := web.NewServer(b)
		workers++
		go func() { errc <- srv.Run(runCtx, addr) }()
	}
	go reload(runCtx, ctx, b, sched, reminders)

	ctx.Printf("%s serving (config %s). Send SIGHUP to reload, Ctrl+C to stop.\n",
		constants.AppName, ctx.Config.Path())
	logger.Info("Bot started", "store", ctx.Store.GetConfigPath(), "web", !c.NoWeb, "jobs", !c.NoJobs)

	if workers == 0 {
		<-runCtx.Done()
	}
	var firstErr error
	for ; workers > 0; workers-- {
		err := <-errc
		// the first worker to stop takes the others down with it
		cancel()
		if err != nil && !errors.Is(err, context.Canceled) && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return firstErr
	}
	logger.Info("Bot stopped")
	return nil
}

// reload rebuilds the services and jobs from a fresh config snapshot on
// every SIGHUP. A snapshot that fails to load leaves the running one in
// place.
func reload(ctx context.Context, c *cli.Context, b *bot.Bot, sched *scheduler.Scheduler, reminders *scheduler.Window) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	current := c
	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
		}

		cfg, err := current.Config.Reload()
		if err != nil {
			logger.Error("Config reload failed, keeping previous config", "error", err)
			continue
		}
		if cfg.Storage != current.Config.Storage {
			logger.Warn("Storage settings changed; restart to apply them")
		}
		next := &cli.Context{Config: cfg, Store: current.Store, Out: current.Out}
		rt, err := build(ctx, next, reminders)
		if err != nil {
			logger.Error("Config reload failed, keeping previous config", "error", err)
			continue
		}
		b.Swap(rt.services)
		sched.SetJobs(rt.jobs, cfg.Now)
		current = next
		logger.Info("Config reloaded", "path", cfg.Path())
		fmt.Fprintln(current.Stdout(), "Config reloaded.")
	}
}
