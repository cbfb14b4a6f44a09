package action

import (
	"encoding/json"

	"github.com/ferrule/scoundrel/internal/core/rules"
)

// gmFinalizeStage is the GM's veto point before the dice hit the table.
// The GM may allow the roll as-is, override any earlier decision, or send
// the whole attempt back to the drawing board.
type gmFinalizeStage struct{}

func (gmFinalizeStage) present(wf Workflow, ctx stageContext) Envelope {
	return Envelope{
		Audience: []Audience{{Kind: AudienceGM}},
		StageKey: wf.StageKey,
		StageData: StageData{
			CharacterID:     wf.Context.CharacterID,
			SelectedAction:  wf.Context.SelectedAction,
			ItemID:          wf.Context.ItemID,
			Position:        wf.Context.Position,
			Effect:          wf.Context.Effect,
			ConsequenceHint: wf.Context.ConsequenceHint,
			Mods:            &wf.Context.Mods,
		},
		UI: &UISpec{Component: "action.Finalize"},
	}
}

func (gmFinalizeStage) submit(wf *Workflow, ctx stageContext, input json.RawMessage) stageResult {
	if !ctx.participants.Has(ctx.actorUserID, RoleGM) {
		return reject(issue("", "only the GM can finalize the roll"))
	}

	in, err := decodeInput[GMFinalizeInput](input)
	if err != nil {
		return reject(issue("input", err.Error()))
	}

	if !in.Allowed() {
		wf.StageKey = StageChooseAction
		return stageResult{}
	}

	if in.Action != "" {
		if !rules.ValidAction(in.Action) {
			return reject(issue("input.action", "unknown action"))
		}
		wf.Context.SelectedAction = in.Action
	}
	if in.ItemID != nil {
		wf.Context.ItemID = *in.ItemID
	}
	if in.Position != "" {
		if !rules.ValidPosition(in.Position) {
			return reject(issue("input.position", "unknown position"))
		}
		wf.Context.Position = in.Position
	}
	if in.Effect != "" {
		if !rules.ValidEffect(in.Effect) {
			return reject(issue("input.effect", "unknown effect"))
		}
		wf.Context.Effect = in.Effect
	}
	if in.ConsequenceHint != nil {
		wf.Context.ConsequenceHint = *in.ConsequenceHint
	}

	wf.StageKey = StagePreRollConfirm
	return stageResult{}
}
