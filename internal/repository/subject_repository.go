package repository

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/noah-isme/klmaterial-hub/internal/models"
)

//go:embed subjects.yaml
var defaultSubjects []byte

type subjectsDocument struct {
	Subjects []models.SubjectConfig `yaml:"subjects"`
}

// LoadSubjectRegistry reads the registry from path, or the compiled-in default when path is empty.
func LoadSubjectRegistry(path string) (*models.SubjectRegistry, error) {
	if path == "" {
		return ParseSubjects(defaultSubjects)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read subjects file: %w", err)
	}
	registry, err := ParseSubjects(raw)
	if err != nil {
		return nil, fmt.Errorf("subjects file %s: %w", path, err)
	}
	return registry, nil
}

// ParseSubjects decodes a YAML subjects document and validates it into a registry.
func ParseSubjects(raw []byte) (*models.SubjectRegistry, error) {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	var doc subjectsDocument
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode subjects: %w", err)
	}
	return models.NewSubjectRegistry(doc.Subjects)
}
