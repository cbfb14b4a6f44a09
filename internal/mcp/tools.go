package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ferrule/scoundrel/internal/action"
	"github.com/ferrule/scoundrel/internal/core/rules"
	apperrors "github.com/ferrule/scoundrel/internal/platform/errors"
	"github.com/ferrule/scoundrel/internal/scene"
	"github.com/ferrule/scoundrel/internal/session"
)

// SceneCreateInput creates a scene.
type SceneCreateInput struct {
	Name     string `json:"name"`
	GMUserID string `json:"gm_user_id"`
}

// SceneCreateResult reports the created scene.
type SceneCreateResult struct {
	SceneID  string `json:"scene_id"`
	Name     string `json:"name"`
	GMUserID string `json:"gm_user_id"`
}

// CharacterAddInput places a character in a scene.
type CharacterAddInput struct {
	SceneID     string              `json:"scene_id"`
	OwnerUserID string              `json:"owner_user_id"`
	Name        string              `json:"name"`
	Data        scene.CharacterData `json:"data"`
}

// CharacterAddResult reports the created character.
type CharacterAddResult struct {
	CharacterID string `json:"character_id"`
}

// SceneGetInput reads a scene snapshot.
type SceneGetInput struct {
	SceneID string `json:"scene_id"`
}

// SceneGetResult carries the scene snapshot.
type SceneGetResult struct {
	SceneID  string         `json:"scene_id"`
	Snapshot scene.Snapshot `json:"snapshot"`
}

// ActionStartInput opens an action workflow.
type ActionStartInput struct {
	SceneID string `json:"scene_id"`
	UserID  string `json:"user_id"`
}

// ActionStartResult reports the opened workflow.
type ActionStartResult struct {
	WorkflowID string `json:"workflow_id"`
	StageKey   string `json:"stage_key"`
	Status     string `json:"status"`
}

// ActionPresentInput reads the current stage for one actor.
type ActionPresentInput struct {
	WorkflowID string `json:"workflow_id"`
	UserID     string `json:"user_id"`
}

// ActionPresentResult carries the stage envelope.
type ActionPresentResult struct {
	Envelope action.Envelope `json:"envelope"`
}

// ActionSubmitInput submits one stage decision.
type ActionSubmitInput struct {
	WorkflowID string `json:"workflow_id"`
	UserID     string `json:"user_id"`
	// Input is the stage-specific payload, passed through verbatim.
	Input map[string]any `json:"input,omitempty"`
}

// ActionSubmitResult reports the submission outcome.
type ActionSubmitResult struct {
	OK         bool               `json:"ok"`
	Issues     []action.Issue     `json:"issues,omitempty"`
	StageKey   string             `json:"stage_key,omitempty"`
	Status     string             `json:"status,omitempty"`
	Next       *action.Envelope   `json:"next,omitempty"`
	Broadcasts []action.Broadcast `json:"broadcasts,omitempty"`
}

// ActionCancelInput cancels an active workflow.
type ActionCancelInput struct {
	WorkflowID string `json:"workflow_id"`
	UserID     string `json:"user_id"`
}

// ActionCancelResult reports the canceled workflow.
type ActionCancelResult struct {
	WorkflowID string `json:"workflow_id"`
	Status     string `json:"status"`
}

// SceneCreateTool defines the scene creation tool.
func SceneCreateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "scene_create",
		Description: "Creates a scene run by the given GM",
	}
}

// SceneCreateHandler executes scene creation.
func SceneCreateHandler(svc *session.Service) mcp.ToolHandlerFor[SceneCreateInput, SceneCreateResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SceneCreateInput) (*mcp.CallToolResult, SceneCreateResult, error) {
		rec, err := svc.CreateScene(ctx, input.Name, input.GMUserID)
		if err != nil {
			return nil, SceneCreateResult{}, apperrors.HandleError(err, apperrors.DefaultLocale)
		}
		return nil, SceneCreateResult{SceneID: rec.ID, Name: rec.Name, GMUserID: rec.GMUserID}, nil
	}
}

// CharacterAddTool defines the character creation tool.
func CharacterAddTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "character_add",
		Description: "Places a character sheet in a scene under an owning user",
	}
}

// CharacterAddHandler executes character creation.
func CharacterAddHandler(svc *session.Service) mcp.ToolHandlerFor[CharacterAddInput, CharacterAddResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CharacterAddInput) (*mcp.CallToolResult, CharacterAddResult, error) {
		rec, err := svc.AddCharacter(ctx, input.SceneID, input.OwnerUserID, input.Name, input.Data)
		if err != nil {
			return nil, CharacterAddResult{}, apperrors.HandleError(err, apperrors.DefaultLocale)
		}
		return nil, CharacterAddResult{CharacterID: rec.ID}, nil
	}
}

// SceneGetTool defines the scene snapshot tool.
func SceneGetTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "scene_get",
		Description: "Reads the current scene snapshot: characters, ratings, stress, traumas",
	}
}

// SceneGetHandler reads a scene snapshot.
func SceneGetHandler(svc *session.Service) mcp.ToolHandlerFor[SceneGetInput, SceneGetResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SceneGetInput) (*mcp.CallToolResult, SceneGetResult, error) {
		snap, err := svc.Snapshot(ctx, input.SceneID)
		if err != nil {
			return nil, SceneGetResult{}, apperrors.HandleError(err, apperrors.DefaultLocale)
		}
		return nil, SceneGetResult{SceneID: input.SceneID, Snapshot: snap}, nil
	}
}

// ActionStartTool defines the workflow start tool.
func ActionStartTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "action_start",
		Description: "Opens an action roll workflow in a scene for the initiating user",
	}
}

// ActionStartHandler opens a workflow.
func ActionStartHandler(svc *session.Service) mcp.ToolHandlerFor[ActionStartInput, ActionStartResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ActionStartInput) (*mcp.CallToolResult, ActionStartResult, error) {
		rec, err := svc.StartAction(ctx, input.SceneID, input.UserID)
		if err != nil {
			return nil, ActionStartResult{}, apperrors.HandleError(err, apperrors.DefaultLocale)
		}
		return nil, ActionStartResult{
			WorkflowID: rec.ID,
			StageKey:   string(rec.Workflow.StageKey),
			Status:     string(rec.Workflow.Status),
		}, nil
	}
}

// ActionPresentTool defines the stage presentation tool.
func ActionPresentTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "action_present",
		Description: "Reads the current workflow stage as seen by one participant",
	}
}

// ActionPresentHandler reads the current stage envelope.
func ActionPresentHandler(svc *session.Service) mcp.ToolHandlerFor[ActionPresentInput, ActionPresentResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ActionPresentInput) (*mcp.CallToolResult, ActionPresentResult, error) {
		env, err := svc.PresentAction(ctx, input.WorkflowID, input.UserID)
		if err != nil {
			return nil, ActionPresentResult{}, apperrors.HandleError(err, apperrors.DefaultLocale)
		}
		return nil, ActionPresentResult{Envelope: env}, nil
	}
}

// ActionSubmitTool defines the stage submission tool.
func ActionSubmitTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "action_submit",
		Description: "Submits one stage decision to an action workflow",
	}
}

// ActionSubmitHandler executes one stage submission. Rejections come back
// as a structured result, not a tool error.
func ActionSubmitHandler(svc *session.Service) mcp.ToolHandlerFor[ActionSubmitInput, ActionSubmitResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ActionSubmitInput) (*mcp.CallToolResult, ActionSubmitResult, error) {
		payload := json.RawMessage("{}")
		if input.Input != nil {
			encoded, err := json.Marshal(input.Input)
			if err != nil {
				return nil, ActionSubmitResult{}, fmt.Errorf("encode stage input: %w", err)
			}
			payload = encoded
		}

		res, err := svc.SubmitAction(ctx, input.WorkflowID, input.UserID, payload)
		if err != nil {
			return nil, ActionSubmitResult{}, apperrors.HandleError(err, apperrors.DefaultLocale)
		}
		out := ActionSubmitResult{
			OK:         res.OK,
			Issues:     res.Issues,
			Next:       res.Next,
			Broadcasts: res.Broadcasts,
		}
		if res.Workflow != nil {
			out.StageKey = string(res.Workflow.StageKey)
			out.Status = string(res.Workflow.Status)
		}
		return nil, out, nil
	}
}

// ActionCancelTool defines the workflow cancel tool.
func ActionCancelTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "action_cancel",
		Description: "Cancels an active action workflow (GM or initiator only)",
	}
}

// ActionCancelHandler cancels a workflow.
func ActionCancelHandler(svc *session.Service) mcp.ToolHandlerFor[ActionCancelInput, ActionCancelResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ActionCancelInput) (*mcp.CallToolResult, ActionCancelResult, error) {
		rec, err := svc.CancelAction(ctx, input.WorkflowID, input.UserID)
		if err != nil {
			return nil, ActionCancelResult{}, apperrors.HandleError(err, apperrors.DefaultLocale)
		}
		return nil, ActionCancelResult{WorkflowID: rec.ID, Status: string(rec.Workflow.Status)}, nil
	}
}

// RulesReferencePayload is the readable rules reference resource body.
type RulesReferencePayload struct {
	Actions    []rules.ActionID                       `json:"actions"`
	Attributes []rules.AttributeID                    `json:"attributes"`
	Groups     map[rules.AttributeID][]rules.ActionID `json:"groups"`
	Positions  []rules.Position                       `json:"positions"`
	Effects    []rules.Effect                         `json:"effects"`
	Traumas    []string                               `json:"traumas"`
}

// RulesReferenceResource defines the readable rules reference.
func RulesReferenceResource() *mcp.Resource {
	return &mcp.Resource{
		Name:        "rules_reference",
		Title:       "Rules reference",
		Description: "Actions, attributes, positions, effects, and trauma labels",
		MIMEType:    "application/json",
		URI:         "rules://reference",
	}
}

// RulesReferenceResourceHandler serves the rules reference payload.
func RulesReferenceResourceHandler() mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		uri := RulesReferenceResource().URI
		if req != nil && req.Params != nil && req.Params.URI != "" {
			uri = req.Params.URI
		}

		groups := make(map[rules.AttributeID][]rules.ActionID, len(rules.Attributes()))
		for _, attr := range rules.Attributes() {
			groups[attr] = rules.ActionsFor(attr)
		}
		payload := RulesReferencePayload{
			Actions:    rules.Actions(),
			Attributes: rules.Attributes(),
			Groups:     groups,
			Positions:  []rules.Position{rules.PositionControlled, rules.PositionRisky, rules.PositionDesperate},
			Effects:    []rules.Effect{rules.EffectLimited, rules.EffectStandard, rules.EffectGreat},
			Traumas:    rules.CanonicalTraumas(),
		}
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode rules reference: %w", err)
		}

		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{
				URI:      uri,
				MIMEType: "application/json",
				Text:     string(encoded),
			}},
		}, nil
	}
}
