package sandbox

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KV is a key/value store backed by the custom_data table.
type KV struct {
	sandbox *Sandbox
}

// KV returns the custom_data key/value view of the sandbox.
func (s *Sandbox) KV() *KV {
	return &KV{sandbox: s}
}

// Get returns the value stored under key.
func (kv *KV) Get(ctx context.Context, key string) (string, bool, error) {
	db, err := kv.sandbox.DB(ctx)
	if err != nil {
		return "", false, err
	}
	kv.sandbox.mu.Lock()
	defer kv.sandbox.mu.Unlock()
	var row CustomData
	err = db.Where(map[string]any{"key": key}).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("sandbox: kv get %s: %w", key, err)
	}
	return row.Value, true, nil
}

// Set upserts key and persists the database image.
func (kv *KV) Set(ctx context.Context, key, value string) error {
	db, err := kv.sandbox.DB(ctx)
	if err != nil {
		return err
	}
	kv.sandbox.mu.Lock()
	defer kv.sandbox.mu.Unlock()
	row := CustomData{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("sandbox: kv set %s: %w", key, err)
	}
	kv.sandbox.persistImageLocked(ctx)
	return nil
}

// Delete removes key. Missing keys are not an error.
func (kv *KV) Delete(ctx context.Context, key string) error {
	db, err := kv.sandbox.DB(ctx)
	if err != nil {
		return err
	}
	kv.sandbox.mu.Lock()
	defer kv.sandbox.mu.Unlock()
	if err := db.Where(map[string]any{"key": key}).Delete(&CustomData{}).Error; err != nil {
		return fmt.Errorf("sandbox: kv delete %s: %w", key, err)
	}
	kv.sandbox.persistImageLocked(ctx)
	return nil
}
