package action

import (
	"encoding/json"

	"github.com/ferrule/scoundrel/internal/core/dice"
)

// preRollConfirmStage shows the initiator the final terms and, on accept,
// assembles the pool and rolls. Cancel keeps the chosen action but clears
// every downstream decision.
type preRollConfirmStage struct{}

func (preRollConfirmStage) present(wf Workflow, ctx stageContext) Envelope {
	pool := poolSize(wf, ctx)
	return Envelope{
		Audience: []Audience{{Kind: AudienceInitiator}},
		StageKey: wf.StageKey,
		StageData: StageData{
			CharacterID:     wf.Context.CharacterID,
			SelectedAction:  wf.Context.SelectedAction,
			ItemID:          wf.Context.ItemID,
			Position:        wf.Context.Position,
			Effect:          wf.Context.Effect,
			Mods:            &wf.Context.Mods,
			ConsequenceHint: wf.Context.ConsequenceHint,
		},
		UI: &UISpec{
			Component: "action.ConfirmRoll",
			Props: map[string]any{
				"pool":        pool,
				"probability": dice.PoolProbability(pool),
			},
		},
	}
}

func (preRollConfirmStage) submit(wf *Workflow, ctx stageContext, input json.RawMessage) stageResult {
	if !ctx.participants.Has(ctx.actorUserID, RoleInitiator) {
		return reject(issue("", "only the initiator can confirm the roll"))
	}

	in, err := decodeInput[PreRollConfirmInput](input)
	if err != nil {
		return reject(issue("input", err.Error()))
	}

	choice := in.Choice
	if choice == "" {
		choice = ChoiceAccept
	}
	switch choice {
	case ChoiceCancel:
		wf.Context.resetDecisions()
		wf.StageKey = StageChooseAction
		return stageResult{}
	case ChoiceAccept:
	default:
		return reject(issue("input.choice", "choice must be accept or cancel"))
	}

	ch, ok := ctx.snap.FindCharacter(wf.Context.CharacterID)
	if !ok {
		return reject(issue("context.character_id", "character not found in scene"))
	}

	base := ch.Data.ActionRating(wf.Context.SelectedAction)
	pool := poolSize(*wf, ctx)
	rolls := dice.RollPool(ctx.rng, pool)
	best, crit := dice.BestAndCrit(rolls)

	wf.Context.Roll = &RollRecord{
		CharacterID:   ch.ID,
		CharacterName: ch.Name,
		Action:        wf.Context.SelectedAction,
		Base:          base,
		Bonus:         pool - base,
		Pool:          pool,
		Rolls:         rolls,
		Best:          best,
		Crit:          crit,
		Outcome:       dice.Classify(rolls),
		Position:      wf.Context.Position,
		Effect:        wf.Context.Effect,
	}
	broadcast := Broadcast{
		Type:    BroadcastDiceRoll,
		Subtype: BroadcastSubtypeAction,
		Roll:    wf.Context.Roll,
	}
	wf.Context.RollBroadcasts = append(wf.Context.RollBroadcasts, broadcast)

	var patch stageResult
	if wf.Context.Mods.Push {
		p, overflow := applyStress(wf, ctx.snap, ch.ID, 2, "push", nil)
		patch.patch = p
		if overflow {
			wf.StageKey = StageWrapUp
			patch.broadcasts = []Broadcast{broadcast}
			return patch
		}
	}

	wf.StageKey = StageMitigate
	patch.broadcasts = []Broadcast{broadcast}
	return patch
}

// poolSize counts the dice for the roll: the character's action rating plus
// one each for push, confirmed help, and devil's bargain. GM-granted bonus
// dice are recorded on the workflow but never pooled.
func poolSize(wf Workflow, ctx stageContext) int {
	base := 0
	if ch, ok := ctx.snap.FindCharacter(wf.Context.CharacterID); ok {
		base = ch.Data.ActionRating(wf.Context.SelectedAction)
	}
	mods := wf.Context.Mods
	if mods.Push {
		base++
	}
	if mods.Help && mods.HelpConfirmed {
		base++
	}
	if mods.DevilsBargain {
		base++
	}
	return base
}
