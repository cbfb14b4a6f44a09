// Package scene models the read-only scene snapshot the action workflow
// operates on: every character in the scene keyed by the owning user, with
// the sheet fields the roll procedure consumes.
//
// The workflow engine never mutates a snapshot. Mutations are described as
// patches (see Patch) that the session layer merges into persistent state.
package scene

import "github.com/ferrule/scoundrel/internal/core/rules"

// Snapshot is a point-in-time view of the scene.
type Snapshot struct {
	// Players maps a user id to that user's entry in the scene.
	Players map[string]PlayerEntry `json:"players"`
}

// PlayerEntry holds the characters controlled by one user.
type PlayerEntry struct {
	Characters []Character `json:"characters"`
}

// Character is one character sheet as seen by the workflow.
type Character struct {
	ID   string        `json:"id"`
	Name string        `json:"name"`
	Data CharacterData `json:"data"`
}

// CharacterData is the sheet payload the roll procedure reads.
type CharacterData struct {
	// Actions maps action ids to non-negative ratings. Unrated actions
	// may be absent.
	Actions map[rules.ActionID]int `json:"actions"`
	// Stress is the current stress track value.
	Stress int `json:"stress"`
	// StressMax overrides the stress track cap when positive.
	StressMax int `json:"stress_max,omitempty"`
	// Traumas holds the distinct trauma labels the character carries.
	Traumas []string `json:"traumas,omitempty"`

	Playbook  string   `json:"playbook,omitempty"`
	Load      string   `json:"load,omitempty"`
	Abilities []string `json:"abilities,omitempty"`
}

// FindCharacter returns the character with the given id, searching every
// player entry. The second return value reports whether it was found.
func (s Snapshot) FindCharacter(characterID string) (Character, bool) {
	for _, entry := range s.Players {
		for _, ch := range entry.Characters {
			if ch.ID == characterID {
				return ch, true
			}
		}
	}
	return Character{}, false
}

// FirstCharacterFor returns the id of the first character controlled by the
// given user, or "" when the user controls none. Assist stress lands on this
// character.
func (s Snapshot) FirstCharacterFor(userID string) string {
	entry, ok := s.Players[userID]
	if !ok || len(entry.Characters) == 0 {
		return ""
	}
	return entry.Characters[0].ID
}

// DisplayName returns the character's display name, falling back to its id.
func (c Character) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.ID
}

// ActionRating returns the character's rating in the given action,
// clamped to be non-negative.
func (d CharacterData) ActionRating(action rules.ActionID) int {
	v := d.Actions[action]
	if v < 0 {
		return 0
	}
	return v
}

// AttributeRating returns the resistance pool for an attribute: the count of
// that attribute's actions with a rating above zero.
func (d CharacterData) AttributeRating(attribute rules.AttributeID) int {
	count := 0
	for action, attr := range rules.ActionToAttribute {
		if attr != attribute {
			continue
		}
		if d.Actions[action] > 0 {
			count++
		}
	}
	return count
}

// CurrentStress returns the stress value, clamped to be non-negative.
func (d CharacterData) CurrentStress() int {
	if d.Stress < 0 {
		return 0
	}
	return d.Stress
}

// StressCap returns the stress track maximum for this character.
func (d CharacterData) StressCap() int {
	if d.StressMax > 0 {
		return d.StressMax
	}
	return rules.StressMaxDefault
}

// HasTrauma reports whether the character already carries the given label.
func (d CharacterData) HasTrauma(label string) bool {
	for _, t := range d.Traumas {
		if t == label {
			return true
		}
	}
	return false
}
