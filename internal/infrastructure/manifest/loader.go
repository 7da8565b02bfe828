// Package manifest loads document batch descriptions from YAML files.
package manifest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/avasiliev/docstream/internal/core/domain"
)

type Manifest struct {
	Documents []Entry `yaml:"documents"`
}

type Entry struct {
	BucketID     int            `yaml:"bucket_id"`
	FileName     string         `yaml:"file_name"`
	FilePath     string         `yaml:"file_path"`
	FileType     string         `yaml:"file_type"`
	ProcessLevel string         `yaml:"process_level"`
	SearchData   map[string]any `yaml:"search_data"`
}

// Load reads a manifest file and converts its entries into documents
// ready for ingestion.
func Load(path string) ([]domain.Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}

	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	if len(m.Documents) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "load manifest", fmt.Errorf("manifest %s lists no documents", path))
	}

	documents := make([]domain.Document, 0, len(m.Documents))
	for i, entry := range m.Documents {
		if entry.BucketID < 1 {
			return nil, domain.WrapError(domain.ErrInvalidInput, "load manifest", fmt.Errorf("document %d: invalid bucket id: %d", i, entry.BucketID))
		}
		if entry.FilePath == "" {
			return nil, domain.WrapError(domain.ErrInvalidInput, "load manifest", fmt.Errorf("document %d: file path is required", i))
		}
		documents = append(documents, domain.Document{
			BucketID:     entry.BucketID,
			FileName:     entry.FileName,
			FilePath:     entry.FilePath,
			FileType:     entry.FileType,
			ProcessLevel: entry.ProcessLevel,
			SearchData:   entry.SearchData,
		})
	}
	return documents, nil
}
