package action

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ferrule/scoundrel/internal/core/rules"
)

// ChooseActionInput declares which character attempts which action.
type ChooseActionInput struct {
	CharacterID string         `json:"character_id"`
	Action      rules.ActionID `json:"action"`
	ItemID      string         `json:"item_id,omitempty"`
}

// GMSetInput sets position, effect, and the consequence sketch.
type GMSetInput struct {
	Position        rules.Position `json:"position"`
	Effect          rules.Effect   `json:"effect"`
	ConsequenceHint string         `json:"consequence_hint,omitempty"`
}

// PlayerModsInput attaches roll modifiers.
type PlayerModsInput struct {
	Push          bool   `json:"push,omitempty"`
	DevilsBargain bool   `json:"devils_bargain,omitempty"`
	BonusDice     int    `json:"bonus_dice,omitempty"`
	Help          bool   `json:"help,omitempty"`
	HelperUserID  string `json:"helper_user_id,omitempty"`
}

// AssistConfirmInput accepts or declines a help request.
type AssistConfirmInput struct {
	AcceptHelp bool `json:"accept_help"`
}

// GMFinalizeInput allows or denies the roll, optionally overriding the
// declared action, item, position, effect, or hint. Nil fields are left
// untouched; a nil Allow means allow.
type GMFinalizeInput struct {
	Allow           *bool          `json:"allow,omitempty"`
	Action          rules.ActionID `json:"action,omitempty"`
	ItemID          *string        `json:"item_id,omitempty"`
	Position        rules.Position `json:"position,omitempty"`
	Effect          rules.Effect   `json:"effect,omitempty"`
	ConsequenceHint *string        `json:"consequence_hint,omitempty"`
}

// Allowed reports the allow decision, defaulting to true when absent.
func (in GMFinalizeInput) Allowed() bool {
	return in.Allow == nil || *in.Allow
}

// Pre-roll and mitigation choices.
const (
	ChoiceAccept = "accept"
	ChoiceCancel = "cancel"
	ChoiceResist = "resist"
)

// PreRollConfirmInput accepts the roll or cancels back to choosing.
type PreRollConfirmInput struct {
	Choice string `json:"choice,omitempty"`
}

// MitigateInput accepts the consequences or chooses to resist them.
type MitigateInput struct {
	Choice string `json:"choice,omitempty"`
}

// ResistInput picks the resistance attribute. A false confirm skips the
// resistance roll and moves straight to wrap-up.
type ResistInput struct {
	Attribute rules.AttributeID `json:"attribute,omitempty"`
	Confirm   *bool             `json:"confirm,omitempty"`
}

// Confirmed reports the confirm decision, defaulting to true when absent.
func (in ResistInput) Confirmed() bool {
	return in.Confirm == nil || *in.Confirm
}

// WrapUpInput records the GM's summary and optional trauma label.
type WrapUpInput struct {
	Trauma  *string `json:"trauma,omitempty"`
	Summary *string `json:"summary,omitempty"`
}

// decodeInput strictly decodes a stage input. Unknown fields and trailing
// data are rejected before any mutation happens; an empty input decodes to
// the zero value so stages with all-optional fields accept it.
func decodeInput[T any](raw json.RawMessage) (T, error) {
	var v T
	if len(bytes.TrimSpace(raw)) == 0 {
		raw = []byte("{}")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return v, err
	}
	var trailing any
	if err := dec.Decode(&trailing); err == nil {
		return v, fmt.Errorf("unexpected trailing data")
	}
	return v, nil
}
