// Package action implements the multi-participant action-roll workflow: a
// finite-state machine that walks a GM, an acting player, and optionally a
// helper through declaring an action, setting position and effect, adding
// modifiers, rolling dice, and settling consequences and stress.
//
// The engine is pure: every call takes the current workflow value, a scene
// snapshot, and the participant directory, and returns the next workflow
// value together with descriptions of side effects (scene patches, dice
// broadcasts). Nothing is persisted or delivered here; the session layer
// owns that, along with serializing access to a workflow instance.
package action
