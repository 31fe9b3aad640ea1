// Command credentials provisions and toggles API credentials.
//
//	credentials create -contact ops@example.org [-token T] [-write]
//	credentials list
//	credentials enable|disable|grant-write|revoke-write TOKEN
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/JaimeStill/folio/internal/auth"
	"github.com/JaimeStill/folio/internal/config"
	"github.com/JaimeStill/folio/internal/infrastructure"
	"github.com/JaimeStill/folio/pkg/database"
	"github.com/JaimeStill/folio/pkg/lifecycle"
)

var errUsage = errors.New("usage: credentials <create|list|enable|disable|grant-write|revoke-write> [flags]")

func main() {
	dbCfg, err := config.LoadDatabase(".")
	if err != nil {
		log.Fatal("config load failed: ", err)
	}

	logger := infrastructure.NewLogger(os.Getenv(config.EnvFolioLogLevel))

	db, err := database.New(dbCfg, logger)
	if err != nil {
		log.Fatal("database init failed: ", err)
	}

	lc := lifecycle.New()
	if err := db.Start(lc); err != nil {
		log.Fatal("database start failed: ", err)
	}
	lc.WaitForStartup()

	if !db.Ready() {
		log.Fatal("database not reachable")
	}

	repo := auth.NewRepository(db.Connection(), logger)
	err = run(lc.Context(), repo, os.Args[1:], os.Stdout)
	lc.Shutdown(5 * time.Second)

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, repo auth.Repository, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "create":
		return create(ctx, repo, rest, out)
	case "list":
		return list(ctx, repo, out)
	case "enable", "disable":
		return toggle(rest, out, cmd, func(token string) error {
			return repo.SetEnabled(ctx, token, cmd == "enable")
		})
	case "grant-write", "revoke-write":
		return toggle(rest, out, cmd, func(token string) error {
			return repo.SetWriteEnabled(ctx, token, cmd == "grant-write")
		})
	default:
		return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
	}
}

func create(ctx context.Context, repo auth.Repository, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	fs.SetOutput(out)

	var cmd auth.CreateCommand
	fs.StringVar(&cmd.Contact, "contact", "", "Contact for the credential holder (required)")
	fs.StringVar(&cmd.Token, "token", "", "Token value (generated when empty)")
	fs.BoolVar(&cmd.WriteEnabled, "write", false, "Grant write access")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.Contact == "" {
		return errors.New("create: -contact is required")
	}

	c, err := repo.Create(ctx, cmd)
	if err != nil {
		return fmt.Errorf("create credential: %w", err)
	}

	fmt.Fprintf(out, "created %s (write=%v)\n", c.Token, c.WriteEnabled)
	return nil
}

func list(ctx context.Context, repo auth.Repository, out io.Writer) error {
	creds, err := repo.List(ctx)
	if err != nil {
		return fmt.Errorf("list credentials: %w", err)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TOKEN\tCONTACT\tENABLED\tWRITE\tCREATED")
	for _, c := range creds {
		fmt.Fprintf(
			tw, "%s\t%s\t%v\t%v\t%s\n",
			c.Token, c.Contact, c.Enabled, c.WriteEnabled,
			c.CreatedAt.UTC().Format(time.RFC3339),
		)
	}
	return tw.Flush()
}

func toggle(args []string, out io.Writer, cmd string, apply func(token string) error) error {
	if len(args) != 1 || args[0] == "" {
		return fmt.Errorf("%s: exactly one token required", cmd)
	}

	if err := apply(args[0]); err != nil {
		return fmt.Errorf("%s: %w", cmd, err)
	}

	fmt.Fprintf(out, "%s: %s\n", cmd, args[0])
	return nil
}
