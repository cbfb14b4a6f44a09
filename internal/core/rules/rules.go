// Package rules defines the fixed Forged-style rules vocabulary shared by
// scene data and the action workflow: the twelve actions, the three
// attributes they group under, positions, effects, and track limits.
package rules

// ActionID identifies one of the twelve rated actions.
type ActionID string

const (
	ActionHunt     ActionID = "hunt"
	ActionStudy    ActionID = "study"
	ActionSurvey   ActionID = "survey"
	ActionTinker   ActionID = "tinker"
	ActionFinesse  ActionID = "finesse"
	ActionProwl    ActionID = "prowl"
	ActionSkirmish ActionID = "skirmish"
	ActionWreck    ActionID = "wreck"
	ActionAttune   ActionID = "attune"
	ActionCommand  ActionID = "command"
	ActionConsort  ActionID = "consort"
	ActionSway     ActionID = "sway"
)

// AttributeID identifies one of the three attribute groups.
type AttributeID string

const (
	AttributeInsight AttributeID = "insight"
	AttributeProwess AttributeID = "prowess"
	AttributeResolve AttributeID = "resolve"
)

// Position describes the risk level the GM sets for an action.
type Position string

const (
	PositionControlled Position = "controlled"
	PositionRisky      Position = "risky"
	PositionDesperate  Position = "desperate"
)

// Effect describes the reward level the GM sets for an action.
type Effect string

const (
	EffectLimited  Effect = "limited"
	EffectStandard Effect = "standard"
	EffectGreat    Effect = "great"
)

const (
	// StressMaxDefault is the stress track cap when a character sheet does
	// not override it.
	StressMaxDefault = 9
	// TraumaMax is the number of distinct trauma labels a character can carry.
	TraumaMax = 4
)

// ActionToAttribute maps each action to the attribute it rolls under.
// Attribute ratings are derived from this grouping, so the map is the
// single source of truth for both directions.
var ActionToAttribute = map[ActionID]AttributeID{
	ActionHunt:     AttributeInsight,
	ActionStudy:    AttributeInsight,
	ActionSurvey:   AttributeInsight,
	ActionTinker:   AttributeInsight,
	ActionFinesse:  AttributeProwess,
	ActionProwl:    AttributeProwess,
	ActionSkirmish: AttributeProwess,
	ActionWreck:    AttributeProwess,
	ActionAttune:   AttributeResolve,
	ActionCommand:  AttributeResolve,
	ActionConsort:  AttributeResolve,
	ActionSway:     AttributeResolve,
}

// Actions returns the action vocabulary in its canonical order.
func Actions() []ActionID {
	return []ActionID{
		ActionHunt, ActionStudy, ActionSurvey, ActionTinker,
		ActionFinesse, ActionProwl, ActionSkirmish, ActionWreck,
		ActionAttune, ActionCommand, ActionConsort, ActionSway,
	}
}

// ActionsFor returns the actions grouped under the given attribute,
// in canonical order.
func ActionsFor(attribute AttributeID) []ActionID {
	out := make([]ActionID, 0, 4)
	for _, action := range Actions() {
		if ActionToAttribute[action] == attribute {
			out = append(out, action)
		}
	}
	return out
}

// Attributes returns the attribute vocabulary in its canonical order.
func Attributes() []AttributeID {
	return []AttributeID{AttributeInsight, AttributeProwess, AttributeResolve}
}

// ValidAction reports whether the given id is part of the action vocabulary.
func ValidAction(action ActionID) bool {
	_, ok := ActionToAttribute[action]
	return ok
}

// ValidAttribute reports whether the given id is a known attribute.
func ValidAttribute(attribute AttributeID) bool {
	switch attribute {
	case AttributeInsight, AttributeProwess, AttributeResolve:
		return true
	}
	return false
}

// ValidPosition reports whether the given position is part of the vocabulary.
func ValidPosition(position Position) bool {
	switch position {
	case PositionControlled, PositionRisky, PositionDesperate:
		return true
	}
	return false
}

// ValidEffect reports whether the given effect is part of the vocabulary.
func ValidEffect(effect Effect) bool {
	switch effect {
	case EffectLimited, EffectStandard, EffectGreat:
		return true
	}
	return false
}

// CanonicalTraumas lists the trauma labels the base game ships with. The
// engine accepts free-text labels; this list only feeds presentation hints.
func CanonicalTraumas() []string {
	return []string{
		"cold", "haunted", "obsessed", "paranoid",
		"reckless", "soft", "unstable", "vicious",
	}
}
