package action

import (
	"github.com/ferrule/scoundrel/internal/core/rules"
	"github.com/ferrule/scoundrel/internal/scene"
)

// Severity grades a submit issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one structured problem with a submission. A failed submit
// carries at least one issue and leaves the workflow untouched.
type Issue struct {
	Path    string   `json:"path"`
	Message string   `json:"message"`
	Level   Severity `json:"level"`
}

func issue(path, message string) Issue {
	return Issue{Path: path, Message: message, Level: SeverityError}
}

// AudienceKind selects who may see a stage envelope.
type AudienceKind string

const (
	AudienceGM        AudienceKind = "gm"
	AudienceInitiator AudienceKind = "initiator"
	AudienceUser      AudienceKind = "user"
	AudienceAll       AudienceKind = "all"
)

// Audience is one semantic audience selector.
type Audience struct {
	Kind   AudienceKind `json:"kind"`
	UserID string       `json:"user_id,omitempty"`
}

// UISpec is an opaque rendering hint for the presentation layer.
type UISpec struct {
	Component string         `json:"component"`
	Props     map[string]any `json:"props,omitempty"`
}

// StageData is the stage-relevant projection of the workflow context.
// Only the fields the current stage needs are populated.
type StageData struct {
	SelectedAction  rules.ActionID `json:"selected_action,omitempty"`
	CharacterID     string         `json:"character_id,omitempty"`
	ItemID          string         `json:"item_id,omitempty"`
	Position        rules.Position `json:"position,omitempty"`
	Effect          rules.Effect   `json:"effect,omitempty"`
	ConsequenceHint string         `json:"consequence_hint,omitempty"`
	Mods            *Mods          `json:"mods,omitempty"`
	Roll            *RollRecord    `json:"roll,omitempty"`
	Resist          *ResistRecord  `json:"resist,omitempty"`
	Summary         string         `json:"summary,omitempty"`
	NeedsTrauma     bool           `json:"needs_trauma,omitempty"`
	TraumaCharacter string         `json:"trauma_character_id,omitempty"`
	StressEvents    []StressEvent  `json:"stress_events,omitempty"`
}

// Envelope is the presentation-only projection of the current stage for
// its audience.
type Envelope struct {
	Audience   []Audience  `json:"audience"`
	StageKey   StageKey    `json:"stage_key"`
	StageData  StageData   `json:"stage_data"`
	UI         *UISpec     `json:"ui,omitempty"`
	Broadcasts []Broadcast `json:"broadcasts,omitempty"`
}

// Broadcast describes a dice-roll announcement for every session member.
// The engine decides content; delivery belongs to the transport.
type Broadcast struct {
	Type    string        `json:"type"`
	Subtype string        `json:"subtype"`
	Roll    *RollRecord   `json:"roll,omitempty"`
	Resist  *ResistRecord `json:"resist,omitempty"`
}

const (
	// BroadcastDiceRoll is the type of every dice broadcast.
	BroadcastDiceRoll = "dice.roll"
	// BroadcastSubtypeAction marks an action roll broadcast.
	BroadcastSubtypeAction = "action"
	// BroadcastSubtypeResistance marks a resistance roll broadcast.
	BroadcastSubtypeResistance = "resistance"
)

// SubmitResult is the transactional outcome of one start or submit call.
type SubmitResult struct {
	OK             bool         `json:"ok"`
	Issues         []Issue      `json:"issues,omitempty"`
	Workflow       *Workflow    `json:"workflow,omitempty"`
	Next           *Envelope    `json:"next,omitempty"`
	Broadcasts     []Broadcast  `json:"broadcasts,omitempty"`
	ParticipantIDs []string     `json:"participant_ids,omitempty"`
	SessionPatch   *scene.Patch `json:"session_patch,omitempty"`
}
