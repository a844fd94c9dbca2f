package system

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/julianstephens/lifeos/internal/cli"
	"github.com/julianstephens/lifeos/internal/keyring"
	"github.com/julianstephens/lifeos/internal/storage/postgres"
)

type SecretCmd struct {
	Database SecretDatabaseCmd `cmd:"" help:"Store the PostgreSQL connection string."`
	Webhook  SecretWebhookCmd  `cmd:"" help:"Store the webhook URL for a destination."`
	Show     SecretShowCmd     `cmd:"" help:"Show the stored connection string with the password masked."`
	Delete   SecretDeleteCmd   `cmd:"" help:"Delete a stored secret."`
	Status   SecretStatusCmd   `cmd:"" help:"Check keyring availability and stored secrets." default:"1"`
}

// SecretDatabaseCmd stores database connection credentials in the OS keyring
type SecretDatabaseCmd struct {
	ConnectionString string `arg:"" help:"PostgreSQL connection string to store in keyring."`
}

func (cmd *SecretDatabaseCmd) Run(ctx *cli.Context) error {
	if !strings.HasPrefix(cmd.ConnectionString, "postgres://") &&
		!strings.HasPrefix(cmd.ConnectionString, "postgresql://") &&
		!strings.Contains(cmd.ConnectionString, "host=") {
		return errors.New("connection string must be a valid PostgreSQL connection string")
	}

	if _, err := postgres.ValidateConnString(cmd.ConnectionString); err != nil {
		if !errors.Is(err, postgres.ErrEmbeddedCredentials) {
			return fmt.Errorf("invalid connection string: %w", err)
		}
		// the keyring is encrypted, so an embedded password is allowed here
		ctx.Println(cli.WarningStyle.Render("⚠️  Warning: Connection string contains embedded credentials."))
		ctx.Println("   It will be stored as-is in the encrypted OS keyring.")
	}

	if err := keyring.SetConnectionString(cmd.ConnectionString); err != nil {
		return fmt.Errorf("failed to store connection string in keyring: %w", err)
	}
	ctx.Println("✓ Connection string stored successfully in OS keyring")
	return nil
}

// SecretWebhookCmd stores the webhook URL a destination is delivered to.
type SecretWebhookCmd struct {
	Destination string `arg:"" help:"Destination id or name, e.g. \"todo\"."`
	URL         string `arg:"" help:"Webhook URL."`
}

func (cmd *SecretWebhookCmd) Run(ctx *cli.Context) error {
	u, err := url.Parse(cmd.URL)
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return fmt.Errorf("invalid webhook URL %q", cmd.URL)
	}
	if ctx.Config != nil && !knownDestination(ctx, cmd.Destination) {
		ctx.Println(cli.WarningStyle.Render(fmt.Sprintf("⚠️  %q is not a configured destination.", cmd.Destination)))
	}
	if err := keyring.Set(keyring.WebhookSecret(cmd.Destination), cmd.URL); err != nil {
		return err
	}
	ctx.Printf("✓ Webhook for %s stored in OS keyring\n", cmd.Destination)
	return nil
}

func knownDestination(ctx *cli.Context, key string) bool {
	for _, d := range ctx.Config.Destinations {
		if strings.EqualFold(d.ID, key) || strings.EqualFold(d.Name, key) {
			return true
		}
	}
	return false
}

// SecretShowCmd retrieves database connection credentials from the OS keyring
type SecretShowCmd struct{}

func (cmd *SecretShowCmd) Run(ctx *cli.Context) error {
	connStr, err := keyring.GetConnectionString()
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no connection string found in keyring. Use 'lifeos secret database' to store one")
		}
		return fmt.Errorf("failed to retrieve connection string from keyring: %w", err)
	}
	ctx.Println("Connection string retrieved from keyring:")
	ctx.Println(maskPassword(connStr))
	return nil
}

// SecretDeleteCmd removes the connection string, or a destination's webhook
// when --webhook is given.
type SecretDeleteCmd struct {
	Webhook string `help:"Delete the webhook of this destination instead of the connection string."`
}

func (cmd *SecretDeleteCmd) Run(ctx *cli.Context) error {
	name, label := "", "connection string"
	if cmd.Webhook != "" {
		name, label = keyring.WebhookSecret(cmd.Webhook), "webhook for "+cmd.Webhook
	}

	var err error
	if name == "" {
		err = keyring.DeleteConnectionString()
	} else {
		err = keyring.Delete(name)
	}
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("no %s found in keyring", label)
		}
		return fmt.Errorf("failed to delete %s from keyring: %w", label, err)
	}
	ctx.Printf("✓ Deleted %s from OS keyring\n", label)
	return nil
}

// SecretStatusCmd checks the availability of the OS keyring
type SecretStatusCmd struct{}

func (cmd *SecretStatusCmd) Run(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		ctx.Println("❌ OS keyring is not available on this system")
		return errors.New("keyring unavailable")
	}
	ctx.Println("✓ OS keyring is available")

	if _, err := keyring.GetConnectionString(); err == nil {
		ctx.Println("✓ Connection string is stored in keyring")
	} else if errors.Is(err, keyring.ErrNotFound) {
		ctx.Println("ℹ No connection string stored in keyring")
	}

	if ctx.Config == nil {
		return nil
	}
	for _, d := range ctx.Config.Destinations {
		switch {
		case d.Webhook != "":
			ctx.Printf("✓ %s: webhook set in config\n", d.Name)
		case hasWebhookSecret(d.ID, d.Name):
			ctx.Printf("✓ %s: webhook stored in keyring\n", d.Name)
		default:
			ctx.Println(cli.DimStyle.Render(fmt.Sprintf("ℹ %s: no webhook", d.Name)))
		}
	}
	return nil
}

func hasWebhookSecret(keys ...string) bool {
	for _, key := range keys {
		if key == "" {
			continue
		}
		if _, err := keyring.Get(keyring.WebhookSecret(key)); err == nil {
			return true
		}
	}
	return false
}

// maskPassword masks passwords in connection strings for display
func maskPassword(connStr string) string {
	if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
		if idx := strings.Index(connStr, "://"); idx != -1 {
			remaining := connStr[idx+3:]
			// the last @ separates user info from host
			if atIdx := strings.LastIndex(remaining, "@"); atIdx != -1 {
				userInfo := remaining[:atIdx]
				if colonIdx := strings.Index(userInfo, ":"); colonIdx != -1 {
					return connStr[:idx+3] + userInfo[:colonIdx] + ":****" + connStr[idx+3+atIdx:]
				}
			}
		}
	}

	if strings.Contains(connStr, "password=") {
		parts := strings.Fields(connStr)
		for i, part := range parts {
			if strings.HasPrefix(part, "password=") {
				parts[i] = "password=****"
			}
		}
		return strings.Join(parts, " ")
	}

	return connStr
}
