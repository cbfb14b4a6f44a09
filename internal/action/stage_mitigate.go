package action

import "encoding/json"

// mitigateStage shows the initiator the roll result and offers a fork:
// accept the consequences as they stand, or ask to resist them.
type mitigateStage struct{}

func (mitigateStage) present(wf Workflow, ctx stageContext) Envelope {
	return Envelope{
		Audience: []Audience{{Kind: AudienceInitiator}},
		StageKey: wf.StageKey,
		StageData: StageData{
			CharacterID:     wf.Context.CharacterID,
			SelectedAction:  wf.Context.SelectedAction,
			Position:        wf.Context.Position,
			Effect:          wf.Context.Effect,
			ConsequenceHint: wf.Context.ConsequenceHint,
			Roll:            wf.Context.Roll,
		},
		UI:         &UISpec{Component: "action.Mitigate"},
		Broadcasts: wf.Context.RollBroadcasts,
	}
}

func (mitigateStage) submit(wf *Workflow, ctx stageContext, input json.RawMessage) stageResult {
	if !ctx.participants.Has(ctx.actorUserID, RoleInitiator) {
		return reject(issue("", "only the initiator can choose how to take the consequences"))
	}

	in, err := decodeInput[MitigateInput](input)
	if err != nil {
		return reject(issue("input", err.Error()))
	}

	choice := in.Choice
	if choice == "" {
		choice = ChoiceAccept
	}
	switch choice {
	case ChoiceAccept:
		wf.StageKey = StageWrapUp
	case ChoiceResist:
		wf.StageKey = StageResist
	default:
		return reject(issue("input.choice", "choice must be accept or resist"))
	}
	return stageResult{}
}
