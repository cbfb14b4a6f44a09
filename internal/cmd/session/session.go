// Package session parses session command flags and runs the MCP-facing
// session service.
package session

import (
	"context"
	"flag"
	"fmt"
	"log"

	platformcmd "github.com/ferrule/scoundrel/internal/platform/cmd"
	"github.com/ferrule/scoundrel/internal/mcp"
	"github.com/ferrule/scoundrel/internal/session"
	"github.com/ferrule/scoundrel/internal/session/storage/sqlite"
)

// Config holds session command configuration.
type Config struct {
	DBPath string `env:"SCOUNDREL_DB_PATH" envDefault:"scoundrel.db"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := platformcmd.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run opens storage, wires the session service, and serves MCP on stdio
// until the context ends.
func Run(ctx context.Context, cfg Config) error {
	return platformcmd.RunWithTelemetry(ctx, platformcmd.ServiceSession, func(ctx context.Context) error {
		store, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open storage: %w", err)
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Printf("close storage: %v", err)
			}
		}()

		svc := session.NewService(store)
		server, err := mcp.New(svc)
		if err != nil {
			return fmt.Errorf("configure MCP server: %w", err)
		}

		log.Printf("serving MCP on stdio (db=%s)", cfg.DBPath)
		return server.Serve(ctx)
	})
}
