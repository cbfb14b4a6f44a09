package action

import (
	"encoding/json"

	"github.com/ferrule/scoundrel/internal/core/rules"
)

// chooseActionStage is the entry stage: the initiator picks a character, an
// action, and optionally an item to use.
type chooseActionStage struct{}

func (chooseActionStage) present(wf Workflow, ctx stageContext) Envelope {
	groups := make([]map[string]any, 0, len(rules.Attributes()))
	for _, attr := range rules.Attributes() {
		groups = append(groups, map[string]any{
			"attribute": attr,
			"actions":   rules.ActionsFor(attr),
		})
	}
	return Envelope{
		Audience: []Audience{{Kind: AudienceInitiator}},
		StageKey: wf.StageKey,
		UI: &UISpec{
			Component: "action.ChooseAction",
			Props: map[string]any{
				"actions":       rules.Actions(),
				"action_groups": groups,
			},
		},
	}
}

func (chooseActionStage) submit(wf *Workflow, ctx stageContext, input json.RawMessage) stageResult {
	if !ctx.participants.Has(ctx.actorUserID, RoleInitiator) {
		return reject(issue("", "only the initiator can choose the action"))
	}

	in, err := decodeInput[ChooseActionInput](input)
	if err != nil {
		return reject(issue("input", err.Error()))
	}

	if !rules.ValidAction(in.Action) {
		return reject(issue("input.action", "unknown action"))
	}
	if in.CharacterID == "" {
		return reject(issue("input.character_id", "character id is required"))
	}
	if _, ok := ctx.snap.FindCharacter(in.CharacterID); !ok {
		return reject(issue("input.character_id", "character not found in scene"))
	}

	wf.Context.CharacterID = in.CharacterID
	wf.Context.SelectedAction = in.Action
	wf.Context.ItemID = in.ItemID
	wf.Context.resetDecisions()
	wf.StageKey = StageGMSetPositionEffect
	return stageResult{}
}
