// Package seed parses seed command flags and loads fixture scenes into the
// session database for local development.
package seed

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ferrule/scoundrel/internal/core/rules"
	platformcmd "github.com/ferrule/scoundrel/internal/platform/cmd"
	"github.com/ferrule/scoundrel/internal/scene"
	"github.com/ferrule/scoundrel/internal/session"
	"github.com/ferrule/scoundrel/internal/session/storage/sqlite"
)

// Config holds seed command configuration.
type Config struct {
	DBPath      string `env:"SCOUNDREL_DB_PATH"   envDefault:"scoundrel.db"`
	FixturePath string `env:"SCOUNDREL_SEED_FILE" envDefault:"seed.yaml"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := platformcmd.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path")
	fs.StringVar(&cfg.FixturePath, "fixture", cfg.FixturePath, "YAML fixture path")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Fixture is the YAML document the seed command loads.
type Fixture struct {
	Scenes []SceneFixture `yaml:"scenes"`
}

// SceneFixture describes one scene and its characters.
type SceneFixture struct {
	Name       string             `yaml:"name"`
	GMUserID   string             `yaml:"gm_user_id"`
	Characters []CharacterFixture `yaml:"characters"`
}

// CharacterFixture describes one character sheet.
type CharacterFixture struct {
	OwnerUserID string         `yaml:"owner_user_id"`
	Name        string         `yaml:"name"`
	Actions     map[string]int `yaml:"actions"`
	Stress      int            `yaml:"stress"`
	StressMax   int            `yaml:"stress_max"`
	Traumas     []string       `yaml:"traumas"`
	Playbook    string         `yaml:"playbook"`
}

// LoadFixture reads and validates a YAML fixture file.
func LoadFixture(path string) (Fixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("read fixture: %w", err)
	}
	var fixture Fixture
	if err := yaml.Unmarshal(raw, &fixture); err != nil {
		return Fixture{}, fmt.Errorf("decode fixture: %w", err)
	}
	if err := validateFixture(fixture); err != nil {
		return Fixture{}, err
	}
	return fixture, nil
}

func validateFixture(fixture Fixture) error {
	if len(fixture.Scenes) == 0 {
		return fmt.Errorf("fixture has no scenes")
	}
	for i, sc := range fixture.Scenes {
		if sc.GMUserID == "" {
			return fmt.Errorf("scene %d: gm_user_id is required", i)
		}
		for j, ch := range sc.Characters {
			if ch.OwnerUserID == "" {
				return fmt.Errorf("scene %d character %d: owner_user_id is required", i, j)
			}
			for name := range ch.Actions {
				if !rules.ValidAction(rules.ActionID(name)) {
					return fmt.Errorf("scene %d character %d: unknown action %q", i, j, name)
				}
			}
		}
	}
	return nil
}

func (c CharacterFixture) data() scene.CharacterData {
	actions := make(map[rules.ActionID]int, len(c.Actions))
	for name, rating := range c.Actions {
		actions[rules.ActionID(name)] = rating
	}
	return scene.CharacterData{
		Actions:   actions,
		Stress:    c.Stress,
		StressMax: c.StressMax,
		Traumas:   c.Traumas,
		Playbook:  c.Playbook,
	}
}

// Apply loads every fixture scene through the session service.
func Apply(ctx context.Context, svc *session.Service, fixture Fixture) error {
	for _, sc := range fixture.Scenes {
		rec, err := svc.CreateScene(ctx, sc.Name, sc.GMUserID)
		if err != nil {
			return fmt.Errorf("create scene %q: %w", sc.Name, err)
		}
		for _, ch := range sc.Characters {
			if _, err := svc.AddCharacter(ctx, rec.ID, ch.OwnerUserID, ch.Name, ch.data()); err != nil {
				return fmt.Errorf("create character %q: %w", ch.Name, err)
			}
		}
		log.Printf("seeded scene %q (%s) with %d characters", sc.Name, rec.ID, len(sc.Characters))
	}
	return nil
}

// Run loads the fixture into the database.
func Run(ctx context.Context, cfg Config) error {
	return platformcmd.RunWithTelemetry(ctx, platformcmd.ServiceSeed, func(ctx context.Context) error {
		fixture, err := LoadFixture(cfg.FixturePath)
		if err != nil {
			return err
		}

		store, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open storage: %w", err)
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Printf("close storage: %v", err)
			}
		}()

		return Apply(ctx, session.NewService(store), fixture)
	})
}
