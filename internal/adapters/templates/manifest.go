package templates

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/xet-labs/xet-composer/internal/domain"
)

// manifest is the on-disk schema describing a template: its identity, the
// declared parameters with their kinds, the constraint rules, and the
// source file the placeholders live in.
type manifest struct {
	ID          string                  `yaml:"id"`
	Contract    string                  `yaml:"contract"`
	Description string                  `yaml:"description"`
	Source      string                  `yaml:"source"`
	Imports     []string                `yaml:"imports"`
	Params      []domain.ParamSpec      `yaml:"params"`
	Rules       []domain.ConstraintRule `yaml:"rules"`
}

var titleCaser = cases.Title(language.English)

func parseManifest(data []byte, source string) (*manifest, error) {
	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse template manifest: %w", err)
	}
	if m.ID == "" {
		return nil, fmt.Errorf("template manifest %s: missing id", source)
	}
	if len(m.Params) == 0 {
		return nil, fmt.Errorf("template manifest %s: no parameters declared", m.ID)
	}
	if m.Contract == "" {
		m.Contract = contractNameFromID(m.ID)
	}
	for _, p := range m.Params {
		switch p.Kind {
		case domain.KindAddress, domain.KindUint, domain.KindDuration, domain.KindTimestamp:
		default:
			return nil, fmt.Errorf("template manifest %s: parameter %q has unknown kind %q", m.ID, p.Name, p.Kind)
		}
	}
	return &m, nil
}

// contractNameFromID derives a Solidity contract name from a template id,
// e.g. "token-vesting" -> "TokenVesting".
func contractNameFromID(id string) string {
	parts := strings.FieldsFunc(id, func(r rune) bool { return r == '-' || r == '_' })
	for i, p := range parts {
		parts[i] = titleCaser.String(p)
	}
	return strings.Join(parts, "")
}

func (m *manifest) descriptor(source string) *domain.TemplateDescriptor {
	return &domain.TemplateDescriptor{
		ID:           m.ID,
		ContractName: m.Contract,
		Description:  m.Description,
		Params:       m.Params,
		Rules:        m.Rules,
		Source:       source,
		Imports:      m.Imports,
	}
}
