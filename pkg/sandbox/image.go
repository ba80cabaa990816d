package sandbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/goliatone/go-startpage/components/startpage"
)

// Snapshot returns the current database file image.
func (s *Sandbox) Snapshot(ctx context.Context) ([]byte, error) {
	if err := s.Init(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(ctx)
}

func (s *Sandbox) snapshotLocked(ctx context.Context) ([]byte, error) {
	dir, err := os.MkdirTemp("", "startpage-image-*")
	if err != nil {
		return nil, fmt.Errorf("sandbox: snapshot: %w", err)
	}
	defer os.RemoveAll(dir)
	target := filepath.Join(dir, "image.db")
	if _, err := s.sqlDB.ExecContext(ctx, "VACUUM INTO ?", target); err != nil {
		return nil, fmt.Errorf("sandbox: snapshot: %w", err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		return nil, fmt.Errorf("sandbox: snapshot: %w", err)
	}
	return data, nil
}

// persistImageLocked stores the image after a successful statement. Failures
// are logged; the statement result stands.
func (s *Sandbox) persistImageLocked(ctx context.Context) {
	if s.opts.Images == nil {
		return
	}
	data, err := s.snapshotLocked(ctx)
	if err != nil {
		s.opts.Logger.Warn("sandbox: image snapshot failed", "error", err)
		return
	}
	encoded, err := EncodeImage(data)
	if err != nil {
		s.opts.Logger.Warn("sandbox: image encode failed", "error", err)
		return
	}
	if err := s.opts.Images.Set(ctx, startpage.DatabaseImageKey, encoded); err != nil {
		s.opts.Logger.Warn("sandbox: image save failed", "error", err)
	}
}

// restoreImage writes the stored image to path when the file does not exist.
func (s *Sandbox) restoreImage(ctx context.Context, path string) error {
	if s.opts.Images == nil {
		return nil
	}
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("sandbox: stat %s: %w", path, err)
	}
	raw, ok, err := s.opts.Images.Get(ctx, startpage.DatabaseImageKey)
	if err != nil {
		return fmt.Errorf("sandbox: load image: %w", err)
	}
	if !ok {
		return nil
	}
	data, err := DecodeImage(raw)
	if err != nil {
		s.opts.Logger.Warn("sandbox: discarding corrupt image", "error", err)
		return nil
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("sandbox: restore image: %w", err)
	}
	return nil
}

// EncodeImage serializes bytes as a JSON array of numbers.
func EncodeImage(data []byte) (string, error) {
	values := make([]int, len(data))
	for i, b := range data {
		values[i] = int(b)
	}
	out, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// DecodeImage parses a JSON array of byte values.
func DecodeImage(raw string) ([]byte, error) {
	var values []int
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, fmt.Errorf("sandbox: decode image: %w", err)
	}
	out := make([]byte, len(values))
	for i, v := range values {
		if v < 0 || v > 255 {
			return nil, fmt.Errorf("sandbox: decode image: value %d out of range at %d", v, i)
		}
		out[i] = byte(v)
	}
	return out, nil
}
