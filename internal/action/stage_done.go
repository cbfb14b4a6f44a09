package action

import "encoding/json"

// doneStage is the terminal projection. It never accepts input.
type doneStage struct{}

func (doneStage) present(wf Workflow, ctx stageContext) Envelope {
	audience := []Audience{{Kind: AudienceGM}, {Kind: AudienceInitiator}}
	return Envelope{
		Audience: audience,
		StageKey: wf.StageKey,
		StageData: StageData{
			CharacterID:    wf.Context.CharacterID,
			SelectedAction: wf.Context.SelectedAction,
			Position:       wf.Context.Position,
			Effect:         wf.Context.Effect,
			Roll:           wf.Context.Roll,
			Resist:         wf.Context.Resist,
			Summary:        wf.Context.Summary,
			StressEvents:   wf.Context.StressEvents,
		},
	}
}

func (doneStage) submit(wf *Workflow, ctx stageContext, input json.RawMessage) stageResult {
	return reject(issue("", "workflow is already complete"))
}
