package action

import "encoding/json"

// playerAddModsStage lets the initiator trade stress and favors for dice:
// pushing, asking for help, or taking the GM's devil's bargain.
type playerAddModsStage struct{}

func (playerAddModsStage) present(wf Workflow, ctx stageContext) Envelope {
	return Envelope{
		Audience: []Audience{{Kind: AudienceInitiator}},
		StageKey: wf.StageKey,
		StageData: StageData{
			CharacterID:     wf.Context.CharacterID,
			SelectedAction:  wf.Context.SelectedAction,
			Position:        wf.Context.Position,
			Effect:          wf.Context.Effect,
			ConsequenceHint: wf.Context.ConsequenceHint,
		},
		UI: &UISpec{Component: "action.AddModifiers"},
	}
}

func (playerAddModsStage) submit(wf *Workflow, ctx stageContext, input json.RawMessage) stageResult {
	if !ctx.participants.Has(ctx.actorUserID, RoleInitiator) {
		return reject(issue("", "only the initiator can add modifiers"))
	}

	in, err := decodeInput[PlayerModsInput](input)
	if err != nil {
		return reject(issue("input", err.Error()))
	}

	if in.Push && in.DevilsBargain {
		return reject(issue("input", "push and devil's bargain are mutually exclusive"))
	}
	if in.Help && in.HelperUserID == "" {
		return reject(issue("input.helper_user_id", "help requires a helper"))
	}

	bonus := in.BonusDice
	if bonus < 0 {
		bonus = 0
	}

	wf.Context.Mods = Mods{
		Push:          in.Push,
		Help:          in.Help,
		HelperUserID:  in.HelperUserID,
		DevilsBargain: in.DevilsBargain,
		BonusDice:     bonus,
	}

	if in.Help {
		wf.StageKey = StageAssistConfirm
	} else {
		wf.StageKey = StageGMFinalize
	}
	return stageResult{}
}
