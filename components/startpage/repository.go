package startpage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// LoadSource reports where a loaded config came from.
type LoadSource string

const (
	// SourceStored means the persisted document was decoded successfully.
	SourceStored LoadSource = "stored"
	// SourceMissing means nothing was persisted yet.
	SourceMissing LoadSource = "missing"
	// SourceStale means the persisted schema version did not match.
	SourceStale LoadSource = "stale"
	// SourceCorrupt means the persisted document could not be decoded.
	SourceCorrupt LoadSource = "corrupt"
)

// ConfigRepository persists the config document plus its schema version marker.
type ConfigRepository struct {
	kv      KeyValueStore
	version int
}

// NewConfigRepository wraps kv. A zero version selects SchemaVersion.
func NewConfigRepository(kv KeyValueStore, version int) *ConfigRepository {
	if version == 0 {
		version = SchemaVersion
	}
	return &ConfigRepository{kv: kv, version: version}
}

// Version returns the schema version written alongside the document.
func (r *ConfigRepository) Version() int {
	return r.version
}

// Load reads the stored config. Anything other than SourceStored returns the
// defaults; the error only reports storage read failures.
func (r *ConfigRepository) Load(ctx context.Context) (DashboardConfig, LoadSource, error) {
	if r == nil || r.kv == nil {
		return DefaultConfig(), SourceMissing, nil
	}
	raw, ok, err := r.kv.Get(ctx, StorageKey)
	if err != nil {
		return DefaultConfig(), SourceMissing, fmt.Errorf("startpage: load config: %w", err)
	}
	if !ok {
		return DefaultConfig(), SourceMissing, nil
	}
	version, vok, err := r.kv.Get(ctx, VersionKey)
	if err != nil {
		return DefaultConfig(), SourceMissing, fmt.Errorf("startpage: load config version: %w", err)
	}
	if !vok || strings.TrimSpace(version) != strconv.Itoa(r.version) {
		return DefaultConfig(), SourceStale, nil
	}
	cfg, err := DecodeConfig([]byte(raw))
	if err != nil {
		return DefaultConfig(), SourceCorrupt, nil
	}
	return cfg, SourceStored, nil
}

// Save writes the config document and the version marker.
func (r *ConfigRepository) Save(ctx context.Context, cfg DashboardConfig) error {
	if r == nil || r.kv == nil {
		return errors.New("startpage: repository storage not configured")
	}
	payload, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("startpage: encode config: %w", err)
	}
	if err := r.kv.Set(ctx, StorageKey, string(payload)); err != nil {
		return fmt.Errorf("startpage: save config: %w", err)
	}
	if err := r.kv.Set(ctx, VersionKey, strconv.Itoa(r.version)); err != nil {
		return fmt.Errorf("startpage: save config version: %w", err)
	}
	return nil
}

// DecodeConfig parses a JSON config document. Missing collections decode as
// empty slices.
func DecodeConfig(data []byte) (DashboardConfig, error) {
	var cfg DashboardConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return DashboardConfig{}, fmt.Errorf("startpage: decode config: %w", err)
	}
	return cfg.Clone(), nil
}
