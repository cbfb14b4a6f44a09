package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ferrule/scoundrel/internal/scene"
	"github.com/ferrule/scoundrel/internal/session/storage"
)

// CreateScene inserts one scene record.
func (s *Store) CreateScene(ctx context.Context, rec storage.SceneRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	sceneID := strings.TrimSpace(rec.ID)
	if sceneID == "" {
		return fmt.Errorf("scene id is required")
	}
	if strings.TrimSpace(rec.GMUserID) == "" {
		return fmt.Errorf("gm user id is required")
	}
	createdAt := rec.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	updatedAt := rec.UpdatedAt.UTC()
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO scenes (id, name, gm_user_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		sceneID,
		strings.TrimSpace(rec.Name),
		strings.TrimSpace(rec.GMUserID),
		toMillis(createdAt),
		toMillis(updatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create scene: %w", err)
	}
	return nil
}

// GetScene returns one scene by id.
func (s *Store) GetScene(ctx context.Context, sceneID string) (storage.SceneRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.SceneRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.SceneRecord{}, fmt.Errorf("storage is not configured")
	}
	sceneID = strings.TrimSpace(sceneID)
	if sceneID == "" {
		return storage.SceneRecord{}, fmt.Errorf("scene id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, name, gm_user_id, created_at, updated_at
		   FROM scenes WHERE id = ?`,
		sceneID,
	)

	var rec storage.SceneRecord
	var createdAt, updatedAt int64
	err := row.Scan(&rec.ID, &rec.Name, &rec.GMUserID, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.SceneRecord{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.SceneRecord{}, fmt.Errorf("get scene: %w", err)
	}
	rec.CreatedAt = fromMillis(createdAt)
	rec.UpdatedAt = fromMillis(updatedAt)
	return rec, nil
}

// CreateCharacter inserts one character record.
func (s *Store) CreateCharacter(ctx context.Context, rec storage.CharacterRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	characterID := strings.TrimSpace(rec.ID)
	if characterID == "" {
		return fmt.Errorf("character id is required")
	}
	if strings.TrimSpace(rec.SceneID) == "" {
		return fmt.Errorf("scene id is required")
	}
	if strings.TrimSpace(rec.OwnerUserID) == "" {
		return fmt.Errorf("owner user id is required")
	}
	data, err := json.Marshal(rec.Data)
	if err != nil {
		return fmt.Errorf("encode character data: %w", err)
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
		`INSERT INTO characters (id, scene_id, owner_user_id, name, data, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		characterID,
		strings.TrimSpace(rec.SceneID),
		strings.TrimSpace(rec.OwnerUserID),
		strings.TrimSpace(rec.Name),
		string(data),
		toMillis(createdAt),
		toMillis(updatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create character: %w", err)
	}
	return nil
}

// ListCharacters returns every character present in a scene.
func (s *Store) ListCharacters(ctx context.Context, sceneID string) ([]storage.CharacterRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	sceneID = strings.TrimSpace(sceneID)
	if sceneID == "" {
		return nil, fmt.Errorf("scene id is required")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, scene_id, owner_user_id, name, data, created_at, updated_at
		   FROM characters
		  WHERE scene_id = ?
		  ORDER BY created_at, id`,
		sceneID,
	)
	if err != nil {
		return nil, fmt.Errorf("list characters: %w", err)
	}
	defer rows.Close()

	var out []storage.CharacterRecord
	for rows.Next() {
		var rec storage.CharacterRecord
		var data string
		var createdAt, updatedAt int64
		if err := rows.Scan(&rec.ID, &rec.SceneID, &rec.OwnerUserID, &rec.Name, &data, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan character: %w", err)
		}
		if err := json.Unmarshal([]byte(data), &rec.Data); err != nil {
			return nil, fmt.Errorf("decode character data: %w", err)
		}
		rec.CreatedAt = fromMillis(createdAt)
		rec.UpdatedAt = fromMillis(updatedAt)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list characters: %w", err)
	}
	return out, nil
}

// UpdateCharacterData replaces one character's sheet data.
func (s *Store) UpdateCharacterData(ctx context.Context, characterID string, data scene.CharacterData) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	characterID = strings.TrimSpace(characterID)
	if characterID == "" {
		return fmt.Errorf("character id is required")
	}
	encoded, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode character data: %w", err)
	}

	res, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE characters SET data = ?, updated_at = ? WHERE id = ?`,
		string(encoded),
		toMillis(time.Now().UTC()),
		characterID,
	)
	if err != nil {
		return fmt.Errorf("update character data: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update character data: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Snapshot assembles the scene view the workflow engine consumes.
func (s *Store) Snapshot(ctx context.Context, sceneID string) (scene.Snapshot, error) {
	records, err := s.ListCharacters(ctx, sceneID)
	if err != nil {
		return scene.Snapshot{}, err
	}

	snap := scene.Snapshot{Players: make(map[string]scene.PlayerEntry)}
	for _, rec := range records {
		entry := snap.Players[rec.OwnerUserID]
		entry.Characters = append(entry.Characters, scene.Character{
			ID:   rec.ID,
			Name: rec.Name,
			Data: rec.Data,
		})
		snap.Players[rec.OwnerUserID] = entry
	}
	return snap, nil
}
