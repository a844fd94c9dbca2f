package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/julianstephens/lifeos/internal/bot"
	"github.com/julianstephens/lifeos/internal/config"
	"github.com/julianstephens/lifeos/internal/constants"
	"github.com/julianstephens/lifeos/internal/keyring"
	"github.com/julianstephens/lifeos/internal/notifier"
	"github.com/julianstephens/lifeos/internal/storage"
	"github.com/julianstephens/lifeos/internal/storage/postgres"
	"github.com/julianstephens/lifeos/internal/storage/sqlite"
)

// ConnectionEnv overrides the keyring as the source of the PostgreSQL
// connection string.
const ConnectionEnv = constants.EnvDBConnection

type Context struct {
	Config *config.Snapshot
	Store  storage.Provider
	// Out receives command output; nil means stdout.
	Out io.Writer
}

func (c *Context) Stdout() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.Stdout(), format, args...)
}

func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.Stdout(), args...)
}

// OpenStore returns the provider selected by the configuration. It does not
// load it.
func OpenStore(cfg *config.Snapshot) (storage.Provider, error) {
	switch cfg.Storage.Backend {
	case config.BackendJSON:
		return storage.NewJSONStore(cfg.Storage.Path), nil
	case config.BackendPostgres:
		connStr, err := connectionString(cfg.Storage.Path)
		if err != nil {
			return nil, err
		}
		return postgres.New(connStr), nil
	default:
		return sqlite.NewStore(cfg.Storage.Path), nil
	}
}

// connectionString picks the PostgreSQL connection string from the
// configured path, the environment, then the keyring. A configured string
// must not embed a password.
func connectionString(configured string) (string, error) {
	if configured != "" {
		if ok, err := postgres.ValidateConnString(configured); !ok {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return "", fmt.Errorf("%w: use %s, .pgpass or 'lifeos secret database' instead", err, ConnectionEnv)
			}
			return "", err
		}
		return configured, nil
	}
	if env := strings.TrimSpace(os.Getenv(ConnectionEnv)); env != "" {
		return env, nil
	}
	connStr, err := keyring.GetConnectionString()
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", errors.New("no PostgreSQL connection string configured: set storage.path, " + ConnectionEnv + " or run 'lifeos secret database'")
		}
		return "", err
	}
	return connStr, nil
}

// NewSink routes messages through the transports named in the
// configuration. w receives the log transport's output.
func NewSink(cfg *config.Snapshot, w io.Writer) (*notifier.Router, error) {
	var transports notifier.Multi
	for _, name := range cfg.Notify.Transports {
		switch name {
		case config.TransportLog:
			transports = append(transports, notifier.NewLogTransport(w))
		case config.TransportWebhook:
			transports = append(transports, notifier.NewWebhookTransport())
		case config.TransportTray:
			transports = append(transports, notifier.NewTrayTransport())
		default:
			return nil, fmt.Errorf("unknown notification transport %q", name)
		}
	}
	if len(transports) == 0 {
		transports = append(transports, notifier.NewLogTransport(w))
	}
	return notifier.NewRouter(cfg.Destinations, transports), nil
}

// Services opens every domain service over the context's store.
func (c *Context) Services(ctx context.Context, sink notifier.Sink) (*bot.Services, error) {
	h, err := c.habits(ctx)
	if err != nil {
		return nil, err
	}
	td, err := c.todos(ctx)
	if err != nil {
		return nil, err
	}
	tk, err := c.tickets(ctx)
	if err != nil {
		return nil, err
	}
	cal, err := c.calendar(ctx)
	if err != nil {
		return nil, err
	}
	return &bot.Services{
		Config:   c.Config,
		Todos:    td,
		Habits:   h,
		Tickets:  tk,
		Calendar: cal,
		Sink:     sink,
	}, nil
}
