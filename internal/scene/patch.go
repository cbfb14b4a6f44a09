package scene

// Patch describes character data mutations for the session layer to merge
// into persistent state. The workflow engine only ever returns patches; it
// never applies them.
type Patch struct {
	Characters []CharacterPatch `json:"characters"`
}

// CharacterPatch targets a single character's data block.
type CharacterPatch struct {
	ID   string    `json:"id"`
	Data DataPatch `json:"data"`
}

// DataPatch holds the fields a patch may change. Nil fields are untouched.
type DataPatch struct {
	Stress  *int     `json:"stress,omitempty"`
	Traumas []string `json:"traumas,omitempty"`
}

// StressPatch builds a patch that sets one character's stress.
func StressPatch(characterID string, stress int) *Patch {
	return &Patch{Characters: []CharacterPatch{{
		ID:   characterID,
		Data: DataPatch{Stress: &stress},
	}}}
}

// TraumaPatch builds a patch that replaces one character's trauma list.
func TraumaPatch(characterID string, traumas []string) *Patch {
	return &Patch{Characters: []CharacterPatch{{
		ID:   characterID,
		Data: DataPatch{Traumas: traumas},
	}}}
}

// Merge folds the patch into the snapshot in place, returning the ids of
// characters it touched. Unknown character ids are skipped.
func (s Snapshot) Merge(p *Patch) []string {
	if p == nil {
		return nil
	}
	var touched []string
	for _, cp := range p.Characters {
		for uid, entry := range s.Players {
			for i, ch := range entry.Characters {
				if ch.ID != cp.ID {
					continue
				}
				if cp.Data.Stress != nil {
					ch.Data.Stress = *cp.Data.Stress
				}
				if cp.Data.Traumas != nil {
					ch.Data.Traumas = append([]string(nil), cp.Data.Traumas...)
				}
				entry.Characters[i] = ch
				s.Players[uid] = entry
				touched = append(touched, cp.ID)
			}
		}
	}
	return touched
}
