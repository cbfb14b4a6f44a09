package action

import "encoding/json"

// assistConfirmStage lets the named helper accept or decline the assist.
// Accepting costs the helper's character one stress immediately.
type assistConfirmStage struct{}

func (assistConfirmStage) present(wf Workflow, ctx stageContext) Envelope {
	return Envelope{
		Audience: []Audience{{Kind: AudienceUser, UserID: wf.Context.Mods.HelperUserID}},
		StageKey: wf.StageKey,
		StageData: StageData{
			CharacterID:    wf.Context.CharacterID,
			SelectedAction: wf.Context.SelectedAction,
			Position:       wf.Context.Position,
			Effect:         wf.Context.Effect,
		},
		UI: &UISpec{Component: "action.ConfirmAssist"},
	}
}

func (assistConfirmStage) submit(wf *Workflow, ctx stageContext, input json.RawMessage) stageResult {
	helper := wf.Context.Mods.HelperUserID
	if helper == "" || ctx.actorUserID != helper {
		return reject(issue("", "only the named helper can confirm the assist"))
	}

	in, err := decodeInput[AssistConfirmInput](input)
	if err != nil {
		return reject(issue("input", err.Error()))
	}

	if !in.AcceptHelp {
		wf.Context.Mods.Help = false
		wf.Context.Mods.HelperUserID = ""
		wf.Context.Mods.HelpConfirmed = false
		wf.StageKey = StageGMFinalize
		return stageResult{}
	}

	helperCharID := ctx.snap.FirstCharacterFor(helper)
	if helperCharID == "" {
		return reject(issue("context.mods.helper_user_id", "helper has no character in the scene"))
	}

	wf.Context.Mods.HelpConfirmed = true

	patch, overflow := applyStress(wf, ctx.snap, helperCharID, 1, "assist", map[string]string{
		"helper_user_id": helper,
	})
	if overflow {
		wf.StageKey = StageWrapUp
	} else {
		wf.StageKey = StageGMFinalize
	}
	return stageResult{patch: patch}
}
