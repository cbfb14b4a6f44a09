// Package storage defines persistence contracts for session state: scenes,
// the characters present in them, and in-flight action workflows.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/ferrule/scoundrel/internal/action"
	"github.com/ferrule/scoundrel/internal/scene"
)

var (
	// ErrNotFound indicates a requested record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a uniqueness-constrained record already exists.
	ErrAlreadyExists = errors.New("record already exists")
)

// SceneRecord stores one scene.
type SceneRecord struct {
	ID        string
	Name      string
	GMUserID  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CharacterRecord stores one character present in a scene.
type CharacterRecord struct {
	ID          string
	SceneID     string
	OwnerUserID string
	Name        string
	Data        scene.CharacterData
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// WorkflowRecord stores one action workflow instance bound to a scene.
type WorkflowRecord struct {
	ID           string
	SceneID      string
	Workflow     action.Workflow
	Participants action.Participants
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SceneStore persists scenes and their characters.
type SceneStore interface {
	CreateScene(ctx context.Context, rec SceneRecord) error
	GetScene(ctx context.Context, sceneID string) (SceneRecord, error)
	CreateCharacter(ctx context.Context, rec CharacterRecord) error
	ListCharacters(ctx context.Context, sceneID string) ([]CharacterRecord, error)
	UpdateCharacterData(ctx context.Context, characterID string, data scene.CharacterData) error
	// Snapshot assembles the scene's characters into the view the workflow
	// engine consumes.
	Snapshot(ctx context.Context, sceneID string) (scene.Snapshot, error)
}

// WorkflowStore persists action workflow instances.
type WorkflowStore interface {
	CreateWorkflow(ctx context.Context, rec WorkflowRecord) error
	GetWorkflow(ctx context.Context, workflowID string) (WorkflowRecord, error)
	UpdateWorkflow(ctx context.Context, rec WorkflowRecord) error
}

// Store is the full persistence surface the session service depends on.
type Store interface {
	SceneStore
	WorkflowStore
}
