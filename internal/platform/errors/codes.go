package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Workflow protocol errors
	CodeWorkflowNotFound     Code = "WORKFLOW_NOT_FOUND"
	CodeWorkflowNotActive    Code = "WORKFLOW_NOT_ACTIVE"
	CodeWorkflowUnknownStage Code = "WORKFLOW_UNKNOWN_STAGE"
	CodeWorkflowRejected     Code = "WORKFLOW_SUBMIT_REJECTED"

	// Scene errors
	CodeSceneNotFound     Code = "SCENE_NOT_FOUND"
	CodeCharacterNotFound Code = "CHARACTER_NOT_FOUND"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
	CodeConflict Code = "CONFLICT"

	// Random/seed errors
	CodeSeedOutOfRange Code = "SEED_OUT_OF_RANGE"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeSeedOutOfRange:
		return codes.InvalidArgument

	// FailedPrecondition - state doesn't allow operation
	case CodeWorkflowNotActive,
		CodeWorkflowUnknownStage,
		CodeWorkflowRejected,
		CodeConflict:
		return codes.FailedPrecondition

	// NotFound - resource doesn't exist
	case CodeNotFound,
		CodeWorkflowNotFound,
		CodeSceneNotFound,
		CodeCharacterNotFound:
		return codes.NotFound

	default:
		return codes.Internal
	}
}
