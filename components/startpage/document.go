package startpage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	documentVersionV1 = "1"
	// DocumentVersion exposes the current export format version for tooling.
	DocumentVersion = documentVersionV1
)

// Document is the portable YAML/JSON export of a config.
type Document struct {
	Version       string          `json:"version" yaml:"version"`
	SchemaVersion int             `json:"schemaVersion" yaml:"schemaVersion"`
	Config        DashboardConfig `json:"config" yaml:"config"`
	Source        string          `json:"-" yaml:"-"`
}

// NewDocument wraps cfg for export.
func NewDocument(cfg DashboardConfig) *Document {
	return &Document{
		Version:       DocumentVersion,
		SchemaVersion: SchemaVersion,
		Config:        cfg.Clone(),
	}
}

// ReadDocument loads a document from disk.
func ReadDocument(path string, validator ConfigValidator) (*Document, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("startpage: open document %s: %w", path, err)
	}
	defer f.Close()
	doc, err := DecodeDocument(f, validator)
	if err != nil {
		return nil, fmt.Errorf("startpage: decode document %s: %w", path, err)
	}
	doc.Source = path
	return doc, nil
}

// DecodeDocument reads a YAML or JSON document and validates it.
func DecodeDocument(r io.Reader, validator ConfigValidator) (*Document, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var doc Document
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("startpage: document is empty")
		}
		return nil, fmt.Errorf("startpage: parse document: %w", err)
	}
	doc.applyDefaults()
	if err := doc.Validate(validator); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate checks the format version, the schema, id uniqueness and
// referential integrity.
func (doc *Document) Validate(validator ConfigValidator) error {
	if doc.Version != documentVersionV1 {
		return fmt.Errorf("startpage: unsupported document version %q", doc.Version)
	}
	if doc.SchemaVersion != SchemaVersion {
		return fmt.Errorf("startpage: document schema version %d does not match %d", doc.SchemaVersion, SchemaVersion)
	}
	if validator == nil {
		validator = noopConfigValidator{}
	}
	if err := validator.Validate(doc.Config); err != nil {
		return err
	}
	if err := uniqueIDs("service", serviceIDs(doc.Config.Services)); err != nil {
		return err
	}
	if err := uniqueIDs("subcategory", subcategoryIDs(doc.Config.Subcategories)); err != nil {
		return err
	}
	if err := uniqueIDs("category", categoryIDs(doc.Config.Categories)); err != nil {
		return err
	}
	return CheckIntegrity(doc.Config)
}

func (doc *Document) applyDefaults() {
	if doc.Version == "" {
		doc.Version = documentVersionV1
	}
	if doc.SchemaVersion == 0 {
		doc.SchemaVersion = SchemaVersion
	}
	if doc.Config.SearchEngine == "" {
		doc.Config.SearchEngine = SearchGoogle
	}
	doc.Config = doc.Config.Clone()
}

func uniqueIDs(kind string, ids []string) error {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return fmt.Errorf("startpage: document duplicates %s id %s", kind, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// EncodeDocument writes doc as "yaml" (default) or "json".
func EncodeDocument(w io.Writer, doc *Document, format string) error {
	switch strings.ToLower(format) {
	case "", "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("startpage: encode yaml: %w", err)
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("startpage: encode json: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("startpage: unsupported document format %q", format)
	}
}
