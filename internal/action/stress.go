package action

import "github.com/ferrule/scoundrel/internal/scene"

// applyStress applies a stress delta to a character and records the audit
// entry on the workflow. When the raw total reaches the character's track
// maximum the stress resets to zero and the workflow is flagged so wrap-up
// prompts for a trauma.
//
// The returned patch describes the mutation for the session layer; nothing
// is written here. A missing character yields no patch and no overflow.
func applyStress(wf *Workflow, snap scene.Snapshot, characterID string, delta int, reason string, meta map[string]string) (*scene.Patch, bool) {
	ch, ok := snap.FindCharacter(characterID)
	if !ok {
		return nil, false
	}

	old := ch.Data.CurrentStress()
	max := ch.Data.StressCap()
	raw := old + delta

	overflow := raw >= max
	next := raw
	if overflow {
		next = 0
	}

	wf.Context.StressEvents = append(wf.Context.StressEvents, StressEvent{
		CharacterID: characterID,
		Old:         old,
		Delta:       delta,
		New:         next,
		Max:         max,
		Overflow:    overflow,
		Reason:      reason,
		Meta:        meta,
	})

	if overflow {
		wf.Context.NeedsTrauma = true
		wf.Context.TraumaCharacterID = characterID
	}

	return scene.StressPatch(characterID, next), overflow
}
