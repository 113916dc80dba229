package cli

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/platinummonkey/collie/pkg/auth"
	"github.com/platinummonkey/collie/pkg/config"
	"github.com/platinummonkey/collie/pkg/storage/sqlite"
)

// newKeyCommand creates the key management command. Key administration is
// out-of-band: there is no HTTP surface for it.
func newKeyCommand() *Command {
	cmd := &Command{
		Name:        "key",
		Description: "Manage API keys (new, list, expire)",
		Subcommands: make(map[string]*Command),
	}
	cmd.Subcommands["new"] = newKeyNewCommand()
	cmd.Subcommands["list"] = newKeyListCommand()
	cmd.Subcommands["expire"] = newKeyExpireCommand()

	cmd.Run = func(args []string) error {
		if len(args) == 0 {
			return cmd.usage()
		}
		if sub, ok := cmd.Subcommands[args[0]]; ok {
			return sub.Run(args[1:])
		}
		return fmt.Errorf("unknown key command: %s", args[0])
	}
	return cmd
}

// openKeyService loads configuration, opens the database, and builds the
// key service. The caller closes the returned handle.
func openKeyService() (*auth.KeyService, *sql.DB, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	db, err := sqlite.Open(sqlite.ConnectionConfig{
		Path:        cfg.Database.Path,
		BusyTimeout: cfg.Database.BusyTimeout,
		PingTimeout: 5 * time.Second,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := sqlite.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrate database: %w", err)
	}

	return auth.NewKeyService(auth.NewStore(db)), db, nil
}

func newKeyNewCommand() *Command {
	flags := flag.NewFlagSet("key new", flag.ExitOnError)
	description := flags.String("description", "", "Free-form description of the key")

	cmd := &Command{
		Name:        "new",
		Description: "Issue a new API key pair",
		Flags:       flags,
	}
	cmd.Run = func(args []string) error {
		if err := flags.Parse(args); err != nil {
			return err
		}

		keys, db, err := openKeyService()
		if err != nil {
			return err
		}
		defer db.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		key, secret, err := keys.CreateKey(ctx, *description)
		if err != nil {
			return fmt.Errorf("create key: %w", err)
		}

		// The secret is shown once and cannot be recovered later.
		fmt.Printf("id:     %d\n", key.ID)
		fmt.Printf("access: %s\n", key.Access)
		fmt.Printf("secret: %s\n", secret)
		return nil
	}
	return cmd
}

func newKeyListCommand() *Command {
	cmd := &Command{
		Name:        "list",
		Description: "List API keys (secrets are never shown)",
	}
	cmd.Run = func(args []string) error {
		keys, db, err := openKeyService()
		if err != nil {
			return err
		}
		defer db.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		infos, err := keys.ListKeys(ctx)
		if err != nil {
			return fmt.Errorf("list keys: %w", err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tACCESS\tDESCRIPTION\tEXPIRED AT")
		for _, info := range infos {
			expired := "-"
			if info.ExpiredAt != nil {
				expired = info.ExpiredAt.UTC().Format(time.RFC3339)
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", info.ID, info.Access, info.Description, expired)
		}
		return w.Flush()
	}
	return cmd
}

func newKeyExpireCommand() *Command {
	flags := flag.NewFlagSet("key expire", flag.ExitOnError)
	id := flags.Int64("id", 0, "ID of the key to expire")

	cmd := &Command{
		Name:        "expire",
		Description: "Expire a key, invalidating its outstanding tokens",
		Flags:       flags,
	}
	cmd.Run = func(args []string) error {
		if err := flags.Parse(args); err != nil {
			return err
		}
		if *id <= 0 {
			return fmt.Errorf("-id is required")
		}

		keys, db, err := openKeyService()
		if err != nil {
			return err
		}
		defer db.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := keys.ExpireKey(ctx, *id); err != nil {
			return fmt.Errorf("expire key %d: %w", *id, err)
		}
		fmt.Printf("key %d expired\n", *id)
		return nil
	}
	return cmd
}
