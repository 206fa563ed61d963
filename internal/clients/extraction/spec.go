package extraction

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed concept_extraction.yaml
var promptSpecYAML []byte

type promptSpec struct {
	Prompt     string `yaml:"prompt"`
	Version    int    `yaml:"version"`
	System     string `yaml:"system"`
	User       string `yaml:"user"`
	SchemaName string `yaml:"schema_name"`
	Limits     struct {
		MaxConcepts   int `yaml:"max_concepts"`
		MinComplexity int `yaml:"min_complexity"`
		MaxComplexity int `yaml:"max_complexity"`
	} `yaml:"limits"`
}

func loadPromptSpec() (*promptSpec, error) {
	var spec promptSpec
	if err := yaml.Unmarshal(promptSpecYAML, &spec); err != nil {
		return nil, fmt.Errorf("parse concept_extraction.yaml: %w", err)
	}
	if strings.TrimSpace(spec.System) == "" || strings.TrimSpace(spec.User) == "" {
		return nil, fmt.Errorf("concept_extraction.yaml: system and user templates required")
	}
	if spec.Limits.MaxConcepts <= 0 {
		spec.Limits.MaxConcepts = 25
	}
	if spec.Limits.MinComplexity <= 0 {
		spec.Limits.MinComplexity = 1
	}
	if spec.Limits.MaxComplexity <= 0 {
		spec.Limits.MaxComplexity = 10
	}
	return &spec, nil
}

func (s *promptSpec) renderUser(content, title string) string {
	out := strings.ReplaceAll(s.User, "{{title}}", title)
	return strings.ReplaceAll(out, "{{content}}", content)
}

// responseSchema is the structured-output contract sent with every
// extraction request.
func (s *promptSpec) responseSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"concepts"},
		"properties": map[string]any{
			"concepts": map[string]any{
				"type":     "array",
				"maxItems": s.Limits.MaxConcepts,
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"required":             []string{"name", "definition", "domain", "complexity_score", "confidence", "related_concepts"},
					"properties": map[string]any{
						"name":             map[string]any{"type": "string"},
						"definition":       map[string]any{"type": "string"},
						"domain":           map[string]any{"type": "string"},
						"complexity_score": map[string]any{"type": "integer"},
						"confidence":       map[string]any{"type": "number"},
						"related_concepts": map[string]any{
							"type":  "array",
							"items": map[string]any{"type": "string"},
						},
					},
				},
			},
		},
	}
}
