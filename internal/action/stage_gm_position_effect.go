package action

import (
	"encoding/json"

	"github.com/ferrule/scoundrel/internal/core/rules"
)

// gmSetPositionEffectStage has the GM rate the fiction: how dangerous the
// attempt is and how much it can accomplish.
type gmSetPositionEffectStage struct{}

func (gmSetPositionEffectStage) present(wf Workflow, ctx stageContext) Envelope {
	return Envelope{
		Audience: []Audience{{Kind: AudienceGM}},
		StageKey: wf.StageKey,
		StageData: StageData{
			CharacterID:    wf.Context.CharacterID,
			SelectedAction: wf.Context.SelectedAction,
			ItemID:         wf.Context.ItemID,
		},
		UI: &UISpec{
			Component: "action.SetPositionEffect",
			Props: map[string]any{
				"positions": []rules.Position{rules.PositionControlled, rules.PositionRisky, rules.PositionDesperate},
				"effects":   []rules.Effect{rules.EffectLimited, rules.EffectStandard, rules.EffectGreat},
			},
		},
	}
}

func (gmSetPositionEffectStage) submit(wf *Workflow, ctx stageContext, input json.RawMessage) stageResult {
	if !ctx.participants.Has(ctx.actorUserID, RoleGM) {
		return reject(issue("", "only the GM can set position and effect"))
	}

	in, err := decodeInput[GMSetInput](input)
	if err != nil {
		return reject(issue("input", err.Error()))
	}

	if !rules.ValidPosition(in.Position) {
		return reject(issue("input.position", "unknown position"))
	}
	if !rules.ValidEffect(in.Effect) {
		return reject(issue("input.effect", "unknown effect"))
	}

	wf.Context.Position = in.Position
	wf.Context.Effect = in.Effect
	wf.Context.ConsequenceHint = in.ConsequenceHint
	wf.StageKey = StagePlayerAddMods
	return stageResult{}
}
