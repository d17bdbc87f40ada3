// Command quotactl manages the origin quotas read by campd.
//
//	quotactl apply origins.yaml
//	quotactl list
//	quotactl enable Borja
//	quotactl disable Borja
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"camp-registration-backend/config"
	"camp-registration-backend/internal/db"
	"camp-registration-backend/internal/store"
)

const usage = `usage: quotactl [--config path] <command> [args]

commands:
  apply <file.yaml>   create or update quotas from a YAML list
  list                print quotas with reserved counts
  enable <origin>     open registrations for origin
  disable <origin>    close registrations for origin
`

func main() {
	flags := pflag.NewFlagSet("quotactl", pflag.ContinueOnError)
	configPath := flags.StringP("config", "c", envOr("CONFIG_PATH", "./config/config.yaml"), "configuration file")
	flags.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	if err := flags.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}
	if flags.NArg() == 0 {
		flags.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatal(err)
	}
	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		fatal(err)
	}

	if err := run(context.Background(), store.NewGormStore(gormDB), os.Stdout, flags.Args()); err != nil {
		fatal(err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "quotactl:", err)
	os.Exit(1)
}

var errUsage = errors.New("invalid arguments; run quotactl --help")

func run(ctx context.Context, s store.Store, out io.Writer, args []string) error {
	switch {
	case len(args) == 2 && args[0] == "apply":
		return apply(ctx, s, out, args[1])
	case len(args) == 1 && args[0] == "list":
		return list(ctx, s, out)
	case len(args) == 2 && (args[0] == "enable" || args[0] == "disable"):
		enabled := args[0] == "enable"
		if err := s.SetQuotaEnabled(ctx, args[1], enabled); err != nil {
			if errors.Is(err, store.ErrQuotaNotFound) {
				return fmt.Errorf("origin %q has no quota; add it with apply", args[1])
			}
			return err
		}
		fmt.Fprintf(out, "%s %sd\n", args[1], args[0])
		return nil
	default:
		return errUsage
	}
}
