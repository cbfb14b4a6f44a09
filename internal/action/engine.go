package action

import (
	"encoding/json"
	"math/rand"
	"time"

	"github.com/ferrule/scoundrel/internal/random"
	"github.com/ferrule/scoundrel/internal/scene"
)

// stageContext carries the per-call collaborators every stage needs.
type stageContext struct {
	snap         scene.Snapshot
	actorUserID  string
	participants Participants
	rng          *rand.Rand
}

// stageResult is what a stage hands back to the engine. Any issue means the
// submission failed and the workflow must be discarded unchanged.
type stageResult struct {
	issues     []Issue
	broadcasts []Broadcast
	patch      *scene.Patch
}

func reject(issues ...Issue) stageResult {
	return stageResult{issues: issues}
}

// stageHandler is one state-transition unit of the workflow.
type stageHandler interface {
	present(wf Workflow, ctx stageContext) Envelope
	submit(wf *Workflow, ctx stageContext, input json.RawMessage) stageResult
}

// Engine drives the action-roll workflow: it owns the stage table and the
// randomness source, dispatches start/present/submit, and assembles the
// externally visible result envelopes.
//
// The engine keeps no workflow state between calls. Callers must serialize
// access to a given workflow instance; two concurrent submits against the
// same stage would race on the context.
type Engine struct {
	stages map[StageKey]stageHandler
	rng    *rand.Rand
}

// Option configures an Engine.
type Option func(*Engine)

// WithRand injects the randomness source, keeping rolls deterministic
// under test.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) {
		e.rng = rng
	}
}

// New constructs an engine with the full stage table. Without options the
// randomness source is seeded from crypto/rand.
func New(opts ...Option) *Engine {
	e := &Engine{
		stages: map[StageKey]stageHandler{
			StageChooseAction:        chooseActionStage{},
			StageGMSetPositionEffect: gmSetPositionEffectStage{},
			StagePlayerAddMods:       playerAddModsStage{},
			StageAssistConfirm:       assistConfirmStage{},
			StageGMFinalize:          gmFinalizeStage{},
			StagePreRollConfirm:      preRollConfirmStage{},
			StageMitigate:            mitigateStage{},
			StageResist:              resistStage{},
			StageWrapUp:              wrapUpStage{},
			StageDone:                doneStage{},
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		seed, err := random.NewSeed()
		if err != nil {
			seed = time.Now().UnixNano()
		}
		e.rng = rand.New(rand.NewSource(seed))
	}
	return e
}

// Start constructs a fresh workflow at choose_action. Only the initiator
// sees the new instance.
func (e *Engine) Start(participants Participants) SubmitResult {
	wf := NewWorkflow()

	var ids []string
	if participants.InitiatorUserID != "" {
		ids = []string{participants.InitiatorUserID}
	}
	return SubmitResult{
		OK:             true,
		Workflow:       &wf,
		ParticipantIDs: ids,
	}
}

// Present returns the read-only projection of the current stage. It never
// mutates the workflow and may be called repeatedly.
func (e *Engine) Present(snap scene.Snapshot, actorUserID string, participants Participants, wf Workflow) Envelope {
	handler, ok := e.stages[wf.StageKey]
	if !ok {
		return Envelope{
			Audience: []Audience{{Kind: AudienceAll}},
			StageKey: StageDone,
		}
	}
	ctx := stageContext{snap: snap, actorUserID: actorUserID, participants: participants, rng: e.rng}
	return handler.present(wf, ctx)
}

// Submit dispatches the input to the current stage's handler. On any
// failure the returned result carries issues and no workflow; the caller's
// stored state remains valid and the same actor can be re-prompted.
func (e *Engine) Submit(snap scene.Snapshot, actorUserID string, participants Participants, wf Workflow, input json.RawMessage) SubmitResult {
	if wf.Status != StatusActive {
		return failure(participants, wf, issue("", "workflow is not active"))
	}

	handler, ok := e.stages[wf.StageKey]
	if !ok {
		return failure(participants, wf, issue("", "unknown stage"))
	}

	next := wf.Clone()
	ctx := stageContext{snap: snap, actorUserID: actorUserID, participants: participants, rng: e.rng}

	res := handler.submit(&next, ctx, input)
	if len(res.issues) > 0 {
		return failure(participants, wf, res.issues...)
	}

	env := e.Present(snap, actorUserID, participants, next)
	return SubmitResult{
		OK:             true,
		Workflow:       &next,
		Next:           &env,
		Broadcasts:     res.broadcasts,
		ParticipantIDs: VisibleUserIDs(participants, next),
		SessionPatch:   res.patch,
	}
}

// failure builds a rejection result. Visibility is computed from the
// unchanged workflow so the same audience can retry.
func failure(participants Participants, wf Workflow, issues ...Issue) SubmitResult {
	return SubmitResult{
		OK:             false,
		Issues:         issues,
		ParticipantIDs: VisibleUserIDs(participants, wf),
	}
}

// VisibleUserIDs computes which participants may see the workflow in its
// current stage: player-facing stages go to the initiator, GM-facing stages
// to the GM, assist confirmation to the named helper (GM when none is
// named), and the terminal stage to both.
func VisibleUserIDs(participants Participants, wf Workflow) []string {
	gm := participants.GMUserID
	initiator := participants.InitiatorUserID

	switch wf.StageKey {
	case StageChooseAction, StagePlayerAddMods, StagePreRollConfirm, StageMitigate:
		return []string{initiator}
	case StageGMSetPositionEffect, StageGMFinalize, StageResist, StageWrapUp:
		return []string{gm}
	case StageAssistConfirm:
		if helper := wf.Context.Mods.HelperUserID; helper != "" {
			return []string{helper}
		}
		return []string{gm}
	case StageDone:
		if gm == initiator {
			return []string{gm}
		}
		return []string{gm, initiator}
	}
	return []string{gm}
}
