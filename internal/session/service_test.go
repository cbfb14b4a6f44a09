package session

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/ferrule/scoundrel/internal/action"
	"github.com/ferrule/scoundrel/internal/core/rules"
	"github.com/ferrule/scoundrel/internal/platform/errors"
	"github.com/ferrule/scoundrel/internal/scene"
	"github.com/ferrule/scoundrel/internal/session/storage"
)

// memStore is an in-memory storage.Store for service tests.
type memStore struct {
	mu         sync.Mutex
	scenes     map[string]storage.SceneRecord
	characters map[string]storage.CharacterRecord
	workflows  map[string]storage.WorkflowRecord
}

func newMemStore() *memStore {
	return &memStore{
		scenes:     make(map[string]storage.SceneRecord),
		characters: make(map[string]storage.CharacterRecord),
		workflows:  make(map[string]storage.WorkflowRecord),
	}
}

func (m *memStore) CreateScene(ctx context.Context, rec storage.SceneRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.scenes[rec.ID]; ok {
		return storage.ErrAlreadyExists
	}
	m.scenes[rec.ID] = rec
	return nil
}

func (m *memStore) GetScene(ctx context.Context, sceneID string) (storage.SceneRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.scenes[sceneID]
	if !ok {
		return storage.SceneRecord{}, storage.ErrNotFound
	}
	return rec, nil
}

func (m *memStore) CreateCharacter(ctx context.Context, rec storage.CharacterRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.characters[rec.ID]; ok {
		return storage.ErrAlreadyExists
	}
	m.characters[rec.ID] = rec
	return nil
}

func (m *memStore) ListCharacters(ctx context.Context, sceneID string) ([]storage.CharacterRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []storage.CharacterRecord
	for _, rec := range m.characters {
		if rec.SceneID == sceneID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *memStore) UpdateCharacterData(ctx context.Context, characterID string, data scene.CharacterData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.characters[characterID]
	if !ok {
		return storage.ErrNotFound
	}
	rec.Data = data
	m.characters[characterID] = rec
	return nil
}

func (m *memStore) Snapshot(ctx context.Context, sceneID string) (scene.Snapshot, error) {
	records, err := m.ListCharacters(ctx, sceneID)
	if err != nil {
		return scene.Snapshot{}, err
	}
	snap := scene.Snapshot{Players: make(map[string]scene.PlayerEntry)}
	for _, rec := range records {
		entry := snap.Players[rec.OwnerUserID]
		entry.Characters = append(entry.Characters, scene.Character{ID: rec.ID, Name: rec.Name, Data: rec.Data})
		snap.Players[rec.OwnerUserID] = entry
	}
	return snap, nil
}

func (m *memStore) CreateWorkflow(ctx context.Context, rec storage.WorkflowRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.workflows[rec.ID]; ok {
		return storage.ErrAlreadyExists
	}
	m.workflows[rec.ID] = rec
	return nil
}

func (m *memStore) GetWorkflow(ctx context.Context, workflowID string) (storage.WorkflowRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.workflows[workflowID]
	if !ok {
		return storage.WorkflowRecord{}, storage.ErrNotFound
	}
	return rec, nil
}

func (m *memStore) UpdateWorkflow(ctx context.Context, rec storage.WorkflowRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.workflows[rec.ID]; !ok {
		return storage.ErrNotFound
	}
	m.workflows[rec.ID] = rec
	return nil
}

var _ storage.Store = (*memStore)(nil)

func newTestService(t *testing.T) (*Service, *memStore) {
	t.Helper()
	store := newMemStore()
	counter := 0
	svc := NewService(store,
		WithEngine(action.New(action.WithRand(rand.New(rand.NewSource(11))))),
		WithClock(func() time.Time {
			return time.Date(2026, time.August, 30, 12, 0, 0, 0, time.UTC)
		}),
		WithIDGenerator(func() (string, error) {
			counter++
			return "id-" + string(rune('a'+counter-1)), nil
		}),
	)
	return svc, store
}

func seedSceneWithCrew(t *testing.T, svc *Service) (sceneID string) {
	t.Helper()
	ctx := context.Background()

	rec, err := svc.CreateScene(ctx, "The Leaky Bucket", "u-gm")
	if err != nil {
		t.Fatalf("create scene: %v", err)
	}
	if _, err := svc.AddCharacter(ctx, rec.ID, "u-ana", "Vey", scene.CharacterData{
		Actions: map[rules.ActionID]int{rules.ActionFinesse: 2, rules.ActionProwl: 1},
		Stress:  3,
	}); err != nil {
		t.Fatalf("add character: %v", err)
	}
	return rec.ID
}

func TestCreateSceneAndSnapshot(t *testing.T) {
	svc, _ := newTestService(t)
	sceneID := seedSceneWithCrew(t, svc)

	snap, err := svc.Snapshot(context.Background(), sceneID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.FirstCharacterFor("u-ana") == "" {
		t.Fatal("character missing from snapshot")
	}
}

func TestSnapshotUnknownScene(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Snapshot(context.Background(), "nope")
	if !errors.IsCode(err, errors.CodeSceneNotFound) {
		t.Fatalf("err = %v, want scene not found", err)
	}
}

func TestStartActionPersistsWorkflow(t *testing.T) {
	svc, store := newTestService(t)
	sceneID := seedSceneWithCrew(t, svc)

	rec, err := svc.StartAction(context.Background(), sceneID, "u-ana")
	if err != nil {
		t.Fatalf("start action: %v", err)
	}
	if rec.Workflow.StageKey != action.StageChooseAction || rec.Workflow.Status != action.StatusActive {
		t.Fatalf("workflow = %+v", rec.Workflow)
	}
	if rec.Participants.GMUserID != "u-gm" || rec.Participants.InitiatorUserID != "u-ana" {
		t.Fatalf("participants = %+v", rec.Participants)
	}

	stored, err := store.GetWorkflow(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("stored workflow missing: %v", err)
	}
	if stored.SceneID != sceneID {
		t.Fatalf("scene id = %q", stored.SceneID)
	}
}

func TestSubmitActionRoundTrip(t *testing.T) {
	svc, store := newTestService(t)
	sceneID := seedSceneWithCrew(t, svc)
	ctx := context.Background()

	rec, err := svc.StartAction(ctx, sceneID, "u-ana")
	if err != nil {
		t.Fatalf("start action: %v", err)
	}
	characterID := mustFirstCharacter(t, svc, sceneID, "u-ana")

	res, err := svc.SubmitAction(ctx, rec.ID, "u-ana",
		json.RawMessage(`{"character_id":"`+characterID+`","action":"finesse"}`))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !res.OK {
		t.Fatalf("issues: %+v", res.Issues)
	}

	stored, _ := store.GetWorkflow(ctx, rec.ID)
	if stored.Workflow.StageKey != action.StageGMSetPositionEffect {
		t.Fatalf("persisted stage = %s", stored.Workflow.StageKey)
	}
}

func TestSubmitActionRejectionKeepsStoredWorkflow(t *testing.T) {
	svc, store := newTestService(t)
	sceneID := seedSceneWithCrew(t, svc)
	ctx := context.Background()

	rec, err := svc.StartAction(ctx, sceneID, "u-ana")
	if err != nil {
		t.Fatalf("start action: %v", err)
	}

	res, err := svc.SubmitAction(ctx, rec.ID, "u-gm",
		json.RawMessage(`{"character_id":"x","action":"finesse"}`))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.OK {
		t.Fatal("wrong actor accepted")
	}

	stored, _ := store.GetWorkflow(ctx, rec.ID)
	if stored.Workflow.StageKey != action.StageChooseAction {
		t.Fatalf("stored stage changed: %s", stored.Workflow.StageKey)
	}
}

func TestSubmitActionPersistsStressPatch(t *testing.T) {
	svc, store := newTestService(t)
	sceneID := seedSceneWithCrew(t, svc)
	ctx := context.Background()

	rec, err := svc.StartAction(ctx, sceneID, "u-ana")
	if err != nil {
		t.Fatalf("start action: %v", err)
	}
	characterID := mustFirstCharacter(t, svc, sceneID, "u-ana")

	steps := []struct {
		actor string
		input string
	}{
		{"u-ana", `{"character_id":"` + characterID + `","action":"finesse"}`},
		{"u-gm", `{"position":"risky","effect":"standard"}`},
		{"u-ana", `{"push":true}`},
		{"u-gm", `{}`},
		{"u-ana", `{"choice":"accept"}`},
	}
	for _, step := range steps {
		res, err := svc.SubmitAction(ctx, rec.ID, step.actor, json.RawMessage(step.input))
		if err != nil {
			t.Fatalf("submit %q: %v", step.input, err)
		}
		if !res.OK {
			t.Fatalf("submit %q rejected: %+v", step.input, res.Issues)
		}
	}

	// Push costs two stress: 3 -> 5, persisted through the patch.
	stored, err := store.ListCharacters(ctx, sceneID)
	if err != nil {
		t.Fatalf("list characters: %v", err)
	}
	if stored[0].Data.Stress != 5 {
		t.Fatalf("persisted stress = %d, want 5", stored[0].Data.Stress)
	}
}

func TestSubmitActionBroadcastsRoll(t *testing.T) {
	svc, _ := newTestService(t)
	sceneID := seedSceneWithCrew(t, svc)
	ctx := context.Background()

	events, cancel := svc.Hub().Subscribe(sceneID, "u-cam", 32)
	defer cancel()

	rec, err := svc.StartAction(ctx, sceneID, "u-ana")
	if err != nil {
		t.Fatalf("start action: %v", err)
	}
	characterID := mustFirstCharacter(t, svc, sceneID, "u-ana")

	steps := []struct {
		actor string
		input string
	}{
		{"u-ana", `{"character_id":"` + characterID + `","action":"finesse"}`},
		{"u-gm", `{"position":"risky","effect":"standard"}`},
		{"u-ana", `{}`},
		{"u-gm", `{}`},
		{"u-ana", `{"choice":"accept"}`},
	}
	for _, step := range steps {
		if res, err := svc.SubmitAction(ctx, rec.ID, step.actor, json.RawMessage(step.input)); err != nil || !res.OK {
			t.Fatalf("submit %q: err=%v res=%+v", step.input, err, res)
		}
	}

	var sawDice bool
	for {
		select {
		case ev := <-events:
			if ev.Type == EventDiceBroadcast {
				sawDice = true
			}
		default:
			if !sawDice {
				t.Fatal("no dice broadcast delivered to scene subscriber")
			}
			return
		}
	}
}

func TestPresentActionEnforcesVisibility(t *testing.T) {
	svc, _ := newTestService(t)
	sceneID := seedSceneWithCrew(t, svc)
	ctx := context.Background()

	rec, err := svc.StartAction(ctx, sceneID, "u-ana")
	if err != nil {
		t.Fatalf("start action: %v", err)
	}

	// choose_action is initiator-only.
	if _, err := svc.PresentAction(ctx, rec.ID, "u-ana"); err != nil {
		t.Fatalf("initiator present: %v", err)
	}
	_, err = svc.PresentAction(ctx, rec.ID, "u-gm")
	if !errors.IsCode(err, errors.CodeWorkflowRejected) {
		t.Fatalf("err = %v, want visibility rejection", err)
	}
}

func TestCancelAction(t *testing.T) {
	svc, store := newTestService(t)
	sceneID := seedSceneWithCrew(t, svc)
	ctx := context.Background()

	rec, err := svc.StartAction(ctx, sceneID, "u-ana")
	if err != nil {
		t.Fatalf("start action: %v", err)
	}

	if _, err := svc.CancelAction(ctx, rec.ID, "u-zed"); !errors.IsCode(err, errors.CodeWorkflowRejected) {
		t.Fatalf("err = %v, want rejection for outsider", err)
	}

	canceled, err := svc.CancelAction(ctx, rec.ID, "u-gm")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if canceled.Workflow.Status != action.StatusCanceled {
		t.Fatalf("status = %s", canceled.Workflow.Status)
	}

	stored, _ := store.GetWorkflow(ctx, rec.ID)
	if stored.Workflow.Status != action.StatusCanceled {
		t.Fatalf("persisted status = %s", stored.Workflow.Status)
	}

	// Canceled workflows accept no input.
	res, err := svc.SubmitAction(ctx, rec.ID, "u-ana", json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.OK {
		t.Fatal("canceled workflow accepted input")
	}

	if _, err := svc.CancelAction(ctx, rec.ID, "u-gm"); !errors.IsCode(err, errors.CodeWorkflowNotActive) {
		t.Fatalf("err = %v, want not active", err)
	}
}

func TestSubmitActionUnknownWorkflow(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.SubmitAction(context.Background(), "nope", "u-ana", json.RawMessage(`{}`))
	if !errors.IsCode(err, errors.CodeWorkflowNotFound) {
		t.Fatalf("err = %v, want workflow not found", err)
	}
}

func mustFirstCharacter(t *testing.T, svc *Service, sceneID, userID string) string {
	t.Helper()
	snap, err := svc.Snapshot(context.Background(), sceneID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	characterID := snap.FirstCharacterFor(userID)
	if characterID == "" {
		t.Fatalf("no character for %s", userID)
	}
	return characterID
}
