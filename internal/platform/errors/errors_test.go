package errors

import (
	"errors"
	"fmt"
	"testing"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	base := New(CodeWorkflowNotActive, "workflow finished")
	wrapped := fmt.Errorf("submit: %w", base)

	if !errors.Is(wrapped, New(CodeWorkflowNotActive, "other text")) {
		t.Error("expected errors with the same code to match")
	}
	if errors.Is(wrapped, New(CodeNotFound, "workflow finished")) {
		t.Error("expected errors with different codes to not match")
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{name: "domain error", err: New(CodeSceneNotFound, "x"), want: CodeSceneNotFound},
		{name: "wrapped domain error", err: fmt.Errorf("load: %w", New(CodeConflict, "x")), want: CodeConflict},
		{name: "plain error", err: errors.New("boom"), want: CodeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.want {
				t.Errorf("GetCode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGRPCCodeMapping(t *testing.T) {
	tests := []struct {
		code Code
		want codes.Code
	}{
		{CodeWorkflowNotFound, codes.NotFound},
		{CodeSceneNotFound, codes.NotFound},
		{CodeCharacterNotFound, codes.NotFound},
		{CodeWorkflowNotActive, codes.FailedPrecondition},
		{CodeWorkflowRejected, codes.FailedPrecondition},
		{CodeSeedOutOfRange, codes.InvalidArgument},
		{CodeUnknown, codes.Internal},
	}
	for _, tt := range tests {
		if got := tt.code.GRPCCode(); got != tt.want {
			t.Errorf("%s maps to %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestHandleErrorAttachesDetails(t *testing.T) {
	err := WithMetadata(CodeCharacterNotFound, "character missing", map[string]string{
		"character_id": "ch-1",
	})

	st, ok := status.FromError(HandleError(err, ""))
	if !ok {
		t.Fatal("expected a gRPC status error")
	}
	if st.Code() != codes.NotFound {
		t.Fatalf("status code = %v, want NotFound", st.Code())
	}

	var foundInfo, foundLocalized bool
	for _, detail := range st.Details() {
		switch d := detail.(type) {
		case *errdetails.ErrorInfo:
			foundInfo = true
			if d.Reason != string(CodeCharacterNotFound) {
				t.Errorf("ErrorInfo reason = %q, want %q", d.Reason, CodeCharacterNotFound)
			}
			if d.Domain != Domain {
				t.Errorf("ErrorInfo domain = %q, want %q", d.Domain, Domain)
			}
		case *errdetails.LocalizedMessage:
			foundLocalized = true
			if d.Message != "Character ch-1 is not present in the scene" {
				t.Errorf("localized message = %q", d.Message)
			}
		}
	}
	if !foundInfo || !foundLocalized {
		t.Errorf("details missing: info=%v localized=%v", foundInfo, foundLocalized)
	}
}

func TestHandleErrorUnknown(t *testing.T) {
	st, ok := status.FromError(HandleError(errors.New("boom"), ""))
	if !ok {
		t.Fatal("expected a gRPC status error")
	}
	if st.Code() != codes.Internal {
		t.Errorf("status code = %v, want Internal", st.Code())
	}
	if HandleError(nil, "") != nil {
		t.Error("nil error should pass through as nil")
	}
}
