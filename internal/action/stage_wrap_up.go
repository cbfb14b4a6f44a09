package action

import (
	"encoding/json"

	"github.com/ferrule/scoundrel/internal/core/rules"
	"github.com/ferrule/scoundrel/internal/scene"
)

// wrapUpStage closes the workflow: the GM records a summary and, when the
// stress ledger demanded one, assigns a trauma to the overflowed character.
type wrapUpStage struct{}

func (wrapUpStage) present(wf Workflow, ctx stageContext) Envelope {
	env := Envelope{
		Audience: []Audience{{Kind: AudienceGM}},
		StageKey: wf.StageKey,
		StageData: StageData{
			CharacterID:     wf.Context.CharacterID,
			SelectedAction:  wf.Context.SelectedAction,
			Position:        wf.Context.Position,
			Effect:          wf.Context.Effect,
			Roll:            wf.Context.Roll,
			Resist:          wf.Context.Resist,
			NeedsTrauma:     wf.Context.NeedsTrauma,
			TraumaCharacter: wf.Context.TraumaCharacterID,
			StressEvents:    wf.Context.StressEvents,
		},
		UI: &UISpec{Component: "action.WrapUp"},
	}
	if wf.Context.NeedsTrauma {
		env.UI.Props = map[string]any{"traumas": rules.CanonicalTraumas()}
	}
	return env
}

func (wrapUpStage) submit(wf *Workflow, ctx stageContext, input json.RawMessage) stageResult {
	if !ctx.participants.Has(ctx.actorUserID, RoleGM) {
		return reject(issue("", "only the GM can wrap up the roll"))
	}

	in, err := decodeInput[WrapUpInput](input)
	if err != nil {
		return reject(issue("input", err.Error()))
	}

	if in.Summary != nil {
		wf.Context.Summary = *in.Summary
	}

	var patch *scene.Patch
	if in.Trauma != nil {
		label := *in.Trauma
		if label == "" {
			return reject(issue("input.trauma", "trauma label cannot be empty"))
		}

		target := wf.Context.TraumaCharacterID
		if target == "" {
			target = wf.Context.CharacterID
		}
		ch, ok := ctx.snap.FindCharacter(target)
		if !ok {
			return reject(issue("context.trauma_character_id", "trauma character not found in scene"))
		}

		traumas := append([]string(nil), ch.Data.Traumas...)
		if !ch.Data.HasTrauma(label) {
			if len(traumas) >= rules.TraumaMax {
				return reject(issue("input.trauma", "character already has the maximum number of traumas"))
			}
			traumas = append(traumas, label)
		}

		wf.Context.Trauma = label
		wf.Context.NeedsTrauma = false
		wf.Context.TraumaCharacterID = ""
		patch = scene.TraumaPatch(target, traumas)
	}

	wf.StageKey = StageDone
	wf.Status = StatusCompleted
	return stageResult{patch: patch}
}
