package seed

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/ferrule/scoundrel/internal/session"
	"github.com/ferrule/scoundrel/internal/session/storage/sqlite"
)

const fixtureYAML = `scenes:
  - name: The Leaky Bucket
    gm_user_id: u-gm
    characters:
      - owner_user_id: u-ana
        name: Vey
        playbook: lurk
        actions:
          finesse: 2
          prowl: 1
        stress: 3
      - owner_user_id: u-bo
        name: Rigg
        actions:
          wreck: 3
        stress: 8
        traumas: [reckless]
`

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath != "scoundrel.db" || cfg.FixturePath != "seed.yaml" {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestLoadFixture(t *testing.T) {
	path := writeFixture(t, fixtureYAML)

	fixture, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("load fixture: %v", err)
	}
	if len(fixture.Scenes) != 1 || len(fixture.Scenes[0].Characters) != 2 {
		t.Fatalf("fixture = %+v", fixture)
	}
	if fixture.Scenes[0].Characters[0].Actions["finesse"] != 2 {
		t.Fatalf("actions = %+v", fixture.Scenes[0].Characters[0].Actions)
	}
}

func TestLoadFixtureRejectsUnknownAction(t *testing.T) {
	path := writeFixture(t, `scenes:
  - name: Bad
    gm_user_id: u-gm
    characters:
      - owner_user_id: u-ana
        name: Vey
        actions:
          fly: 2
`)

	if _, err := LoadFixture(path); err == nil {
		t.Fatal("expected unknown action error")
	}
}

func TestLoadFixtureRejectsEmpty(t *testing.T) {
	path := writeFixture(t, "scenes: []\n")
	if _, err := LoadFixture(path); err == nil {
		t.Fatal("expected empty fixture error")
	}
}

func TestApplySeedsDatabase(t *testing.T) {
	path := writeFixture(t, fixtureYAML)
	fixture, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("load fixture: %v", err)
	}

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "seed.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	counter := 0
	svc := session.NewService(store, session.WithIDGenerator(func() (string, error) {
		counter++
		return fmt.Sprintf("id-%d", counter), nil
	}))

	if err := Apply(context.Background(), svc, fixture); err != nil {
		t.Fatalf("apply: %v", err)
	}

	// CreateScene runs first, so the scene holds the first generated id.
	listed, err := store.ListCharacters(context.Background(), "id-1")
	if err != nil {
		t.Fatalf("list characters: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("characters = %d, want 2", len(listed))
	}
	snap, err := store.Snapshot(context.Background(), "id-1")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.FirstCharacterFor("u-ana") == "" || snap.FirstCharacterFor("u-bo") == "" {
		t.Fatal("seeded characters missing from snapshot")
	}
}
