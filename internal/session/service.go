// Package session coordinates scenes and action workflows: it owns
// persistence, per-scene serialization, and event fanout around the pure
// workflow engine.
package session

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ferrule/scoundrel/internal/action"
	"github.com/ferrule/scoundrel/internal/platform/errors"
	"github.com/ferrule/scoundrel/internal/platform/id"
	"github.com/ferrule/scoundrel/internal/scene"
	"github.com/ferrule/scoundrel/internal/session/storage"
)

// Service exposes the session-level operations around the action workflow.
type Service struct {
	store  storage.Store
	engine *action.Engine
	hub    *Hub
	clock  func() time.Time
	newID  func() (string, error)
	tracer trace.Tracer

	mu         sync.Mutex
	sceneLocks map[string]*sync.Mutex
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithEngine injects the workflow engine, e.g. one with a fixed randomness
// source under test.
func WithEngine(engine *action.Engine) ServiceOption {
	return func(s *Service) { s.engine = engine }
}

// WithHub injects the event hub.
func WithHub(hub *Hub) ServiceOption {
	return func(s *Service) { s.hub = hub }
}

// WithClock injects the time source.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *Service) { s.clock = clock }
}

// WithIDGenerator injects the id source.
func WithIDGenerator(gen func() (string, error)) ServiceOption {
	return func(s *Service) { s.newID = gen }
}

// NewService creates a Service with default dependencies.
func NewService(store storage.Store, opts ...ServiceOption) *Service {
	s := &Service{
		store:      store,
		clock:      time.Now,
		newID:      id.NewID,
		tracer:     otel.Tracer("scoundrel/session"),
		sceneLocks: make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.engine == nil {
		s.engine = action.New()
	}
	if s.hub == nil {
		s.hub = NewHub()
	}
	return s
}

// Hub returns the event hub for transports to subscribe on.
func (s *Service) Hub() *Hub {
	return s.hub
}

// sceneLock returns the mutex serializing writes for one scene.
func (s *Service) sceneLock(sceneID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.sceneLocks[sceneID]
	if !ok {
		lock = &sync.Mutex{}
		s.sceneLocks[sceneID] = lock
	}
	return lock
}

// CreateScene creates a scene run by the given GM.
func (s *Service) CreateScene(ctx context.Context, name, gmUserID string) (storage.SceneRecord, error) {
	ctx, span := s.tracer.Start(ctx, "session.CreateScene")
	defer span.End()

	sceneID, err := s.newID()
	if err != nil {
		return storage.SceneRecord{}, errors.Wrap(errors.CodeUnknown, "generate scene id", err)
	}
	now := s.clock().UTC()
	rec := storage.SceneRecord{
		ID:        sceneID,
		Name:      name,
		GMUserID:  gmUserID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateScene(ctx, rec); err != nil {
		if stderrors.Is(err, storage.ErrAlreadyExists) {
			return storage.SceneRecord{}, errors.New(errors.CodeConflict, "scene already exists")
		}
		return storage.SceneRecord{}, errors.Wrap(errors.CodeUnknown, "create scene", err)
	}
	span.SetAttributes(attribute.String("scene.id", sceneID))
	return rec, nil
}

// GetScene returns one scene.
func (s *Service) GetScene(ctx context.Context, sceneID string) (storage.SceneRecord, error) {
	rec, err := s.store.GetScene(ctx, sceneID)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return storage.SceneRecord{}, errors.WithMetadata(errors.CodeSceneNotFound, "scene not found",
				map[string]string{"scene_id": sceneID})
		}
		return storage.SceneRecord{}, errors.Wrap(errors.CodeUnknown, "get scene", err)
	}
	return rec, nil
}

// AddCharacter places a character in a scene under the given owner.
func (s *Service) AddCharacter(ctx context.Context, sceneID, ownerUserID, name string, data scene.CharacterData) (storage.CharacterRecord, error) {
	ctx, span := s.tracer.Start(ctx, "session.AddCharacter")
	defer span.End()

	if _, err := s.GetScene(ctx, sceneID); err != nil {
		return storage.CharacterRecord{}, err
	}

	characterID, err := s.newID()
	if err != nil {
		return storage.CharacterRecord{}, errors.Wrap(errors.CodeUnknown, "generate character id", err)
	}
	now := s.clock().UTC()
	rec := storage.CharacterRecord{
		ID:          characterID,
		SceneID:     sceneID,
		OwnerUserID: ownerUserID,
		Name:        name,
		Data:        data,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateCharacter(ctx, rec); err != nil {
		if stderrors.Is(err, storage.ErrAlreadyExists) {
			return storage.CharacterRecord{}, errors.New(errors.CodeConflict, "character already exists")
		}
		return storage.CharacterRecord{}, errors.Wrap(errors.CodeUnknown, "create character", err)
	}
	return rec, nil
}

// Snapshot returns the scene view the workflow engine consumes.
func (s *Service) Snapshot(ctx context.Context, sceneID string) (scene.Snapshot, error) {
	if _, err := s.GetScene(ctx, sceneID); err != nil {
		return scene.Snapshot{}, err
	}
	snap, err := s.store.Snapshot(ctx, sceneID)
	if err != nil {
		return scene.Snapshot{}, errors.Wrap(errors.CodeUnknown, "load snapshot", err)
	}
	return snap, nil
}

// StartAction opens a new action workflow in a scene for the initiator.
func (s *Service) StartAction(ctx context.Context, sceneID, initiatorUserID string) (storage.WorkflowRecord, error) {
	ctx, span := s.tracer.Start(ctx, "session.StartAction",
		trace.WithAttributes(attribute.String("scene.id", sceneID)))
	defer span.End()

	sceneRec, err := s.GetScene(ctx, sceneID)
	if err != nil {
		return storage.WorkflowRecord{}, err
	}

	participants := action.Participants{
		GMUserID:        sceneRec.GMUserID,
		InitiatorUserID: initiatorUserID,
	}
	res := s.engine.Start(participants)

	workflowID, err := s.newID()
	if err != nil {
		return storage.WorkflowRecord{}, errors.Wrap(errors.CodeUnknown, "generate workflow id", err)
	}
	now := s.clock().UTC()
	rec := storage.WorkflowRecord{
		ID:           workflowID,
		SceneID:      sceneID,
		Workflow:     *res.Workflow,
		Participants: participants,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateWorkflow(ctx, rec); err != nil {
		return storage.WorkflowRecord{}, errors.Wrap(errors.CodeUnknown, "create workflow", err)
	}

	s.hub.Publish(Event{
		SceneID: sceneID,
		UserIDs: res.ParticipantIDs,
		Type:    EventWorkflowStarted,
		Payload: map[string]string{"workflow_id": workflowID},
	})
	span.SetAttributes(attribute.String("workflow.id", workflowID))
	return rec, nil
}

// PresentAction returns the current stage envelope when the actor is in its
// audience.
func (s *Service) PresentAction(ctx context.Context, workflowID, actorUserID string) (action.Envelope, error) {
	rec, err := s.getWorkflow(ctx, workflowID)
	if err != nil {
		return action.Envelope{}, err
	}
	snap, err := s.store.Snapshot(ctx, rec.SceneID)
	if err != nil {
		return action.Envelope{}, errors.Wrap(errors.CodeUnknown, "load snapshot", err)
	}

	visible := action.VisibleUserIDs(rec.Participants, rec.Workflow)
	if !containsUser(visible, actorUserID) {
		return action.Envelope{}, errors.WithMetadata(errors.CodeWorkflowRejected,
			"stage is not visible to this participant",
			map[string]string{"workflow_id": workflowID})
	}
	return s.engine.Present(snap, actorUserID, rec.Participants, rec.Workflow), nil
}

// SubmitAction runs one stage submission. Rejections are returned inside
// the result, not as errors; the stored workflow is only replaced when the
// submission succeeds.
func (s *Service) SubmitAction(ctx context.Context, workflowID, actorUserID string, input json.RawMessage) (action.SubmitResult, error) {
	ctx, span := s.tracer.Start(ctx, "session.SubmitAction",
		trace.WithAttributes(attribute.String("workflow.id", workflowID)))
	defer span.End()

	rec, err := s.getWorkflow(ctx, workflowID)
	if err != nil {
		return action.SubmitResult{}, err
	}

	lock := s.sceneLock(rec.SceneID)
	lock.Lock()
	defer lock.Unlock()

	// Re-read under the lock so concurrent submits see each other.
	rec, err = s.getWorkflow(ctx, workflowID)
	if err != nil {
		return action.SubmitResult{}, err
	}
	snap, err := s.store.Snapshot(ctx, rec.SceneID)
	if err != nil {
		return action.SubmitResult{}, errors.Wrap(errors.CodeUnknown, "load snapshot", err)
	}

	res := s.engine.Submit(snap, actorUserID, rec.Participants, rec.Workflow, input)
	span.SetAttributes(attribute.Bool("workflow.submit_ok", res.OK))
	if !res.OK {
		return res, nil
	}

	rec.Workflow = *res.Workflow
	if err := s.store.UpdateWorkflow(ctx, rec); err != nil {
		return action.SubmitResult{}, errors.Wrap(errors.CodeUnknown, "persist workflow", err)
	}

	if res.SessionPatch != nil {
		touched := snap.Merge(res.SessionPatch)
		for _, characterID := range touched {
			ch, ok := snap.FindCharacter(characterID)
			if !ok {
				continue
			}
			if err := s.store.UpdateCharacterData(ctx, characterID, ch.Data); err != nil {
				return action.SubmitResult{}, errors.Wrap(errors.CodeUnknown, "persist character data", err)
			}
		}
	}

	for _, b := range res.Broadcasts {
		s.hub.Publish(Event{
			SceneID: rec.SceneID,
			Type:    EventDiceBroadcast,
			Payload: b,
		})
	}
	s.hub.Publish(Event{
		SceneID: rec.SceneID,
		UserIDs: res.ParticipantIDs,
		Type:    EventWorkflowUpdated,
		Payload: map[string]string{
			"workflow_id": workflowID,
			"stage_key":   string(rec.Workflow.StageKey),
		},
	})
	return res, nil
}

// CancelAction marks an active workflow canceled. Only the GM or the
// initiator may cancel.
func (s *Service) CancelAction(ctx context.Context, workflowID, actorUserID string) (storage.WorkflowRecord, error) {
	ctx, span := s.tracer.Start(ctx, "session.CancelAction",
		trace.WithAttributes(attribute.String("workflow.id", workflowID)))
	defer span.End()

	rec, err := s.getWorkflow(ctx, workflowID)
	if err != nil {
		return storage.WorkflowRecord{}, err
	}

	lock := s.sceneLock(rec.SceneID)
	lock.Lock()
	defer lock.Unlock()

	rec, err = s.getWorkflow(ctx, workflowID)
	if err != nil {
		return storage.WorkflowRecord{}, err
	}
	if rec.Workflow.Status != action.StatusActive {
		return storage.WorkflowRecord{}, errors.New(errors.CodeWorkflowNotActive, "workflow is not active")
	}
	p := rec.Participants
	if actorUserID != p.GMUserID && actorUserID != p.InitiatorUserID {
		return storage.WorkflowRecord{}, errors.New(errors.CodeWorkflowRejected,
			"only the GM or the initiator can cancel the workflow")
	}

	rec.Workflow.Status = action.StatusCanceled
	if err := s.store.UpdateWorkflow(ctx, rec); err != nil {
		return storage.WorkflowRecord{}, errors.Wrap(errors.CodeUnknown, "persist workflow", err)
	}

	s.hub.Publish(Event{
		SceneID: rec.SceneID,
		UserIDs: []string{p.GMUserID, p.InitiatorUserID},
		Type:    EventWorkflowUpdated,
		Payload: map[string]string{"workflow_id": workflowID, "status": string(action.StatusCanceled)},
	})
	return rec, nil
}

// GetWorkflow returns one workflow record.
func (s *Service) GetWorkflow(ctx context.Context, workflowID string) (storage.WorkflowRecord, error) {
	return s.getWorkflow(ctx, workflowID)
}

func (s *Service) getWorkflow(ctx context.Context, workflowID string) (storage.WorkflowRecord, error) {
	rec, err := s.store.GetWorkflow(ctx, workflowID)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return storage.WorkflowRecord{}, errors.WithMetadata(errors.CodeWorkflowNotFound, "workflow not found",
				map[string]string{"workflow_id": workflowID})
		}
		return storage.WorkflowRecord{}, errors.Wrap(errors.CodeUnknown, "get workflow", err)
	}
	return rec, nil
}
