package action

import (
	"github.com/ferrule/scoundrel/internal/core/dice"
	"github.com/ferrule/scoundrel/internal/core/rules"
)

// Key tags serialized workflow state as belonging to the action-roll
// procedure.
const Key = "forged.roll_action"

// StageKey identifies one stage of the workflow.
type StageKey string

const (
	StageChooseAction        StageKey = "choose_action"
	StageGMSetPositionEffect StageKey = "gm_set_position_effect"
	StagePlayerAddMods       StageKey = "player_add_mods"
	StageAssistConfirm       StageKey = "assist_confirm"
	StageGMFinalize          StageKey = "gm_finalize"
	StagePreRollConfirm      StageKey = "prerollconfirm"
	StageMitigate            StageKey = "mitigate"
	StageResist              StageKey = "resist"
	StageWrapUp              StageKey = "wrap_up"
	StageDone                StageKey = "done"
)

// Status is the workflow lifecycle state.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCanceled  Status = "canceled"
)

// Mods holds the modifiers the initiator attached to the roll.
type Mods struct {
	Push          bool   `json:"push"`
	Help          bool   `json:"help"`
	HelperUserID  string `json:"helper_user_id,omitempty"`
	HelpConfirmed bool   `json:"help_confirmed"`
	DevilsBargain bool   `json:"devils_bargain"`
	// BonusDice is recorded for the session log but does not enter the
	// computed pool.
	BonusDice int `json:"bonus_dice"`
}

// RollRecord captures a resolved action roll.
type RollRecord struct {
	CharacterID   string         `json:"character_id"`
	CharacterName string         `json:"character_name"`
	Action        rules.ActionID `json:"action"`
	Base          int            `json:"base"`
	Bonus         int            `json:"bonus"`
	Pool          int            `json:"pool"`
	Rolls         []int          `json:"rolls"`
	Best          int            `json:"best"`
	Crit          bool           `json:"crit"`
	Outcome       dice.Outcome   `json:"outcome"`
	Position      rules.Position `json:"position,omitempty"`
	Effect        rules.Effect   `json:"effect,omitempty"`
}

// ResistRecord captures a resolved resistance roll.
type ResistRecord struct {
	Attribute  rules.AttributeID `json:"attribute"`
	Pool       int               `json:"pool"`
	Rolls      []int             `json:"rolls"`
	Best       int               `json:"best"`
	Crit       bool              `json:"crit"`
	StressCost int               `json:"stress_cost"`
}

// StressEvent is one audit entry from the stress ledger. The list is
// durable evidence for the GM-facing wrap-up stage.
type StressEvent struct {
	CharacterID string            `json:"character_id"`
	Old         int               `json:"old"`
	Delta       int               `json:"delta"`
	New         int               `json:"new"`
	Max         int               `json:"max"`
	Overflow    bool              `json:"overflow"`
	Reason      string            `json:"reason"`
	Meta        map[string]string `json:"meta,omitempty"`
}

// Context accumulates every decision made across the stages. Each field is
// written only by the stage that owns it; stages run strictly sequentially
// within one workflow instance.
type Context struct {
	CharacterID     string         `json:"character_id,omitempty"`
	SelectedAction  rules.ActionID `json:"selected_action,omitempty"`
	ItemID          string         `json:"item_id,omitempty"`
	Position        rules.Position `json:"position,omitempty"`
	Effect          rules.Effect   `json:"effect,omitempty"`
	ConsequenceHint string         `json:"consequence_hint,omitempty"`

	Mods Mods `json:"mods"`

	Roll             *RollRecord   `json:"roll,omitempty"`
	RollBroadcasts   []Broadcast   `json:"roll_broadcasts,omitempty"`
	Resist           *ResistRecord `json:"resist,omitempty"`
	ResistBroadcasts []Broadcast   `json:"resist_broadcasts,omitempty"`

	Summary string `json:"summary,omitempty"`
	Trauma  string `json:"trauma,omitempty"`

	StressEvents      []StressEvent `json:"stress_events,omitempty"`
	NeedsTrauma       bool          `json:"needs_trauma,omitempty"`
	TraumaCharacterID string        `json:"trauma_character_id,omitempty"`
}

// Workflow is one action-roll resolution instance. The engine treats it as
// transient input/output; the caller owns persistence and locking.
type Workflow struct {
	ActionKey string   `json:"action_key"`
	StageKey  StageKey `json:"stage_key"`
	Context   Context  `json:"context"`
	Status    Status   `json:"status"`
}

// NewWorkflow returns a fresh workflow at the choose_action stage.
func NewWorkflow() Workflow {
	return Workflow{
		ActionKey: Key,
		StageKey:  StageChooseAction,
		Status:    StatusActive,
	}
}

// Clone returns a deep copy, so a stage can mutate freely while the caller
// keeps the pre-submit value for failure paths.
func (w Workflow) Clone() Workflow {
	c := w
	c.Context.Roll = cloneRoll(w.Context.Roll)
	c.Context.Resist = cloneResist(w.Context.Resist)
	c.Context.RollBroadcasts = cloneBroadcasts(w.Context.RollBroadcasts)
	c.Context.ResistBroadcasts = cloneBroadcasts(w.Context.ResistBroadcasts)
	c.Context.StressEvents = cloneStressEvents(w.Context.StressEvents)
	return c
}

// resetDecisions clears every decision downstream of choosing an action.
// Both the choose_action stage and a pre-roll cancel use it.
func (c *Context) resetDecisions() {
	c.Position = ""
	c.Effect = ""
	c.ConsequenceHint = ""
	c.Mods = Mods{}
	c.Roll = nil
	c.RollBroadcasts = nil
	c.Resist = nil
	c.ResistBroadcasts = nil
	c.Summary = ""
	c.Trauma = ""
	c.StressEvents = nil
	c.NeedsTrauma = false
	c.TraumaCharacterID = ""
}

func cloneRoll(r *RollRecord) *RollRecord {
	if r == nil {
		return nil
	}
	c := *r
	c.Rolls = append([]int(nil), r.Rolls...)
	return &c
}

func cloneResist(r *ResistRecord) *ResistRecord {
	if r == nil {
		return nil
	}
	c := *r
	c.Rolls = append([]int(nil), r.Rolls...)
	return &c
}

func cloneBroadcasts(list []Broadcast) []Broadcast {
	if list == nil {
		return nil
	}
	out := make([]Broadcast, len(list))
	for i, b := range list {
		out[i] = Broadcast{
			Type:    b.Type,
			Subtype: b.Subtype,
			Roll:    cloneRoll(b.Roll),
			Resist:  cloneResist(b.Resist),
		}
	}
	return out
}

func cloneStressEvents(list []StressEvent) []StressEvent {
	if list == nil {
		return nil
	}
	out := make([]StressEvent, len(list))
	for i, ev := range list {
		out[i] = ev
		if ev.Meta != nil {
			meta := make(map[string]string, len(ev.Meta))
			for k, v := range ev.Meta {
				meta[k] = v
			}
			out[i].Meta = meta
		}
	}
	return out
}
