package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ferrule/scoundrel/internal/action"
	"github.com/ferrule/scoundrel/internal/session/storage"
)

// CreateWorkflow inserts one workflow record.
func (s *Store) CreateWorkflow(ctx context.Context, rec storage.WorkflowRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	workflowID := strings.TrimSpace(rec.ID)
	if workflowID == "" {
		return fmt.Errorf("workflow id is required")
	}
	if strings.TrimSpace(rec.SceneID) == "" {
		return fmt.Errorf("scene id is required")
	}
	contextJSON, err := json.Marshal(rec.Workflow.Context)
	if err != nil {
		return fmt.Errorf("encode workflow context: %w", err)
	}
	participantsJSON, err := json.Marshal(rec.Participants)
	if err != nil {
		return fmt.Errorf("encode participants: %w", err)
	}
	createdAt := rec.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	updatedAt := rec.UpdatedAt.UTC()
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}

	_, err = s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO workflows (id, scene_id, action_key, stage_key, status, context, participants, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		workflowID,
		strings.TrimSpace(rec.SceneID),
		rec.Workflow.ActionKey,
		string(rec.Workflow.StageKey),
		string(rec.Workflow.Status),
		string(contextJSON),
		string(participantsJSON),
		toMillis(createdAt),
		toMillis(updatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create workflow: %w", err)
	}
	return nil
}

// GetWorkflow returns one workflow by id.
func (s *Store) GetWorkflow(ctx context.Context, workflowID string) (storage.WorkflowRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.WorkflowRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.WorkflowRecord{}, fmt.Errorf("storage is not configured")
	}
	workflowID = strings.TrimSpace(workflowID)
	if workflowID == "" {
		return storage.WorkflowRecord{}, fmt.Errorf("workflow id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, scene_id, action_key, stage_key, status, context, participants, created_at, updated_at
		   FROM workflows WHERE id = ?`,
		workflowID,
	)

	var rec storage.WorkflowRecord
	var stageKey, status, contextJSON, participantsJSON string
	var createdAt, updatedAt int64
	err := row.Scan(
		&rec.ID,
		&rec.SceneID,
		&rec.Workflow.ActionKey,
		&stageKey,
		&status,
		&contextJSON,
		&participantsJSON,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.WorkflowRecord{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.WorkflowRecord{}, fmt.Errorf("get workflow: %w", err)
	}
	rec.Workflow.StageKey = action.StageKey(stageKey)
	rec.Workflow.Status = action.Status(status)
	if err := json.Unmarshal([]byte(contextJSON), &rec.Workflow.Context); err != nil {
		return storage.WorkflowRecord{}, fmt.Errorf("decode workflow context: %w", err)
	}
	if err := json.Unmarshal([]byte(participantsJSON), &rec.Participants); err != nil {
		return storage.WorkflowRecord{}, fmt.Errorf("decode participants: %w", err)
	}
	rec.CreatedAt = fromMillis(createdAt)
	rec.UpdatedAt = fromMillis(updatedAt)
	return rec, nil
}

// UpdateWorkflow replaces one workflow's mutable state.
func (s *Store) UpdateWorkflow(ctx context.Context, rec storage.WorkflowRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	workflowID := strings.TrimSpace(rec.ID)
	if workflowID == "" {
		return fmt.Errorf("workflow id is required")
	}
	contextJSON, err := json.Marshal(rec.Workflow.Context)
	if err != nil {
		return fmt.Errorf("encode workflow context: %w", err)
	}

	res, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE workflows SET stage_key = ?, status = ?, context = ?, updated_at = ?
		  WHERE id = ?`,
		string(rec.Workflow.StageKey),
		string(rec.Workflow.Status),
		string(contextJSON),
		toMillis(time.Now().UTC()),
		workflowID,
	)
	if err != nil {
		return fmt.Errorf("update workflow: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update workflow: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}
