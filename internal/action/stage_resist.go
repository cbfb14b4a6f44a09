package action

import (
	"encoding/json"
	"strconv"

	"github.com/ferrule/scoundrel/internal/core/dice"
	"github.com/ferrule/scoundrel/internal/core/rules"
)

// resistStage is GM-adjudicated: the GM picks the attribute, rolls the
// resistance pool, and the stress cost lands on the acting character.
// Declining sends the workflow straight to wrap-up.
type resistStage struct{}

func (resistStage) present(wf Workflow, ctx stageContext) Envelope {
	return Envelope{
		Audience: []Audience{{Kind: AudienceGM}},
		StageKey: wf.StageKey,
		StageData: StageData{
			CharacterID:     wf.Context.CharacterID,
			SelectedAction:  wf.Context.SelectedAction,
			Position:        wf.Context.Position,
			Effect:          wf.Context.Effect,
			ConsequenceHint: wf.Context.ConsequenceHint,
			Roll:            wf.Context.Roll,
		},
		UI: &UISpec{
			Component: "action.Resist",
			Props: map[string]any{
				"attributes": rules.Attributes(),
			},
		},
	}
}

func (resistStage) submit(wf *Workflow, ctx stageContext, input json.RawMessage) stageResult {
	if !ctx.participants.Has(ctx.actorUserID, RoleGM) {
		return reject(issue("", "only the GM can resolve a resistance roll"))
	}

	in, err := decodeInput[ResistInput](input)
	if err != nil {
		return reject(issue("input", err.Error()))
	}

	if !in.Confirmed() {
		wf.StageKey = StageWrapUp
		return stageResult{}
	}

	if !rules.ValidAttribute(in.Attribute) {
		return reject(issue("input.attribute", "unknown attribute"))
	}

	ch, ok := ctx.snap.FindCharacter(wf.Context.CharacterID)
	if !ok {
		return reject(issue("context.character_id", "character not found in scene"))
	}

	pool := ch.Data.AttributeRating(in.Attribute)
	rolls := dice.RollPool(ctx.rng, pool)
	best, crit := dice.BestAndCrit(rolls)

	cost := 6 - best
	if cost < 0 {
		cost = 0
	}
	if crit && cost > 0 {
		cost--
	}

	wf.Context.Resist = &ResistRecord{
		Attribute:  in.Attribute,
		Pool:       pool,
		Rolls:      rolls,
		Best:       best,
		Crit:       crit,
		StressCost: cost,
	}
	broadcast := Broadcast{
		Type:    BroadcastDiceRoll,
		Subtype: BroadcastSubtypeResistance,
		Resist:  wf.Context.Resist,
	}
	wf.Context.ResistBroadcasts = append(wf.Context.ResistBroadcasts, broadcast)

	patch, _ := applyStress(wf, ctx.snap, ch.ID, cost, "resist", map[string]string{
		"attribute": string(in.Attribute),
		"best":      strconv.Itoa(best),
		"crit":      strconv.FormatBool(crit),
	})

	wf.StageKey = StageWrapUp
	return stageResult{broadcasts: []Broadcast{broadcast}, patch: patch}
}
