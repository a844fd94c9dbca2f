package system

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/julianstephens/lifeos/internal/cli"
	"github.com/julianstephens/lifeos/internal/config"
	"github.com/julianstephens/lifeos/internal/constants"
	"github.com/julianstephens/lifeos/internal/storage"
	"github.com/julianstephens/lifeos/internal/storage/postgres"
	"github.com/julianstephens/lifeos/internal/storage/sqlite"
)

type InitCmd struct {
	Force  bool   `help:"Delete the existing local store before initialization."`
	Source string `help:"Store file or PostgreSQL connection string to copy sheets from."`
}

// sheets lists every sheet with the header it is created with.
var sheets = []struct {
	name   string
	header []string
}{
	{constants.SheetTodos, constants.TodoHeader},
	{constants.SheetHabits, constants.HabitHeader},
	{constants.SheetTickets, constants.TicketHeader},
	{constants.SheetEvents, constants.EventHeader},
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if err := writeDefaultConfig(ctx); err != nil {
		return err
	}

	if c.Force && ctx.Config.Storage.Backend != config.BackendPostgres {
		path := ctx.Store.GetConfigPath()
		if c.Source != "" && samePath(path, c.Source) {
			return fmt.Errorf("cannot use --force when source and destination are the same: %s", path)
		}
		if _, err := os.Stat(path); err == nil {
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing store: %w", err)
			}
			if err := os.Remove(path); err != nil {
				return fmt.Errorf("failed to delete existing store: %w", err)
			}
			ctx.Printf("Deleted existing store at: %s\n", path)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing store: %w", err)
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}

	bg := context.Background()
	for _, s := range sheets {
		if _, err := ctx.Store.Table(bg, s.name, s.header); err != nil {
			return fmt.Errorf("failed to create %s sheet: %w", s.name, err)
		}
	}
	ctx.Printf("Initialized lifeos storage at: %s\n", ctx.Store.GetConfigPath())

	if c.Source != "" {
		ctx.Printf("Copying sheets from: %s\n", c.Source)
		if err := c.copySheets(bg, ctx); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		ctx.Println("Migration completed successfully!")
	}
	return nil
}

func writeDefaultConfig(ctx *cli.Context) error {
	path := ctx.Config.Path()
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to access config file: %w", err)
	}
	if err := config.Defaults().Write(path); err != nil {
		return fmt.Errorf("failed to write default config: %w", err)
	}
	ctx.Printf("Wrote default configuration to: %s\n", path)
	return nil
}

func openSource(source string) (storage.Provider, error) {
	switch {
	case strings.HasPrefix(source, "postgres://"), strings.HasPrefix(source, "postgresql://"):
		if ok, err := postgres.ValidateConnString(source); !ok {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, fmt.Errorf("PostgreSQL source connection string contains embedded credentials. Use environment variables or .pgpass instead")
			}
			return nil, err
		}
		return postgres.New(source), nil
	case filepath.Ext(source) == ".json":
		return storage.NewJSONStore(source), nil
	default:
		return sqlite.NewStore(source), nil
	}
}

// copySheets appends every data row of the source sheets to the matching
// destination sheets, which must be empty.
func (c *InitCmd) copySheets(bg context.Context, ctx *cli.Context) error {
	src, err := openSource(c.Source)
	if err != nil {
		return err
	}
	if err := src.Load(); err != nil {
		return fmt.Errorf("failed to load source store: %w", err)
	}
	defer src.Close()

	for _, s := range sheets {
		from, err := src.Table(bg, s.name, s.header)
		if err != nil {
			return fmt.Errorf("failed to open source %s sheet: %w", s.name, err)
		}
		to, err := ctx.Store.Table(bg, s.name, s.header)
		if err != nil {
			return fmt.Errorf("failed to open %s sheet: %w", s.name, err)
		}

		existing, err := to.Find(bg, storage.All)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return fmt.Errorf("destination %s sheet already has %d rows, use --force to start empty", s.name, len(existing))
		}

		rows, err := from.Find(bg, storage.All)
		if err != nil {
			return fmt.Errorf("failed to read source %s sheet: %w", s.name, err)
		}
		for _, row := range rows {
			if _, err := to.Append(bg, row.Fields); err != nil {
				return fmt.Errorf("failed to copy %s row %d: %w", s.name, row.ID, err)
			}
		}
		ctx.Printf("  Copied %d %s rows\n", len(rows), s.name)
	}
	return nil
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}
