package i18n

// Error codes must match the codes defined in internal/platform/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodeWorkflowNotFound     = "WORKFLOW_NOT_FOUND"
	CodeWorkflowNotActive    = "WORKFLOW_NOT_ACTIVE"
	CodeWorkflowUnknownStage = "WORKFLOW_UNKNOWN_STAGE"
	CodeWorkflowRejected     = "WORKFLOW_SUBMIT_REJECTED"
	CodeSceneNotFound        = "SCENE_NOT_FOUND"
	CodeCharacterNotFound    = "CHARACTER_NOT_FOUND"
	CodeNotFound             = "NOT_FOUND"
	CodeConflict             = "CONFLICT"
	CodeSeedOutOfRange       = "SEED_OUT_OF_RANGE"
)

var enUSCatalog = &Catalog{
	locale: "en-US",
	messages: map[string]string{
		// Workflow protocol errors
		CodeWorkflowNotFound:     "No action roll is in progress for this scene",
		CodeWorkflowNotActive:    "The action roll has already finished",
		CodeWorkflowUnknownStage: "The action roll is in an unrecognized stage",
		CodeWorkflowRejected:     "The submission was rejected",

		// Scene errors
		CodeSceneNotFound:     "Scene {{.scene_id}} was not found",
		CodeCharacterNotFound: "Character {{.character_id}} is not present in the scene",

		// Storage errors
		CodeNotFound: "The requested resource was not found",
		CodeConflict: "The resource was modified by someone else; retry",

		// Random/seed errors
		CodeSeedOutOfRange: "Random seed is out of valid range",
	},
}
