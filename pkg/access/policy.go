// Package access implements role-based edit authorization for product fields.
// Ownership is static configuration: every field and form section declares
// the single role that may edit it, and a role may edit only what it owns.
package access

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fisworks/product-engine/pkg/apperrors"
	"github.com/fisworks/product-engine/pkg/models"
)

//go:embed ownership.yaml
var ownershipYAML []byte

// FieldKind determines how a field value is checked for presence.
type FieldKind string

const (
	// KindText is a plain input; present when the value is a non-empty string.
	KindText FieldKind = "text"
	// KindMulti is a checkbox group; present when at least one item is selected.
	KindMulti FieldKind = "multi"
	// KindRichText is editor content; present when non-empty after tag stripping.
	KindRichText FieldKind = "richtext"
)

// FieldRule declares ownership and validation for one form field.
type FieldRule struct {
	Name     string      `yaml:"name"`
	Section  string      `yaml:"section"`
	Owner    models.Role `yaml:"owner"`
	Kind     FieldKind   `yaml:"kind"`
	Required bool        `yaml:"required"`
}

// SectionRule declares ownership for one form section. Section ownership is
// the coarse layer: all controls inside a foreign section are disabled even
// if no field rule matches them individually.
type SectionRule struct {
	Key   string      `yaml:"key"`
	Title string      `yaml:"title"`
	Owner models.Role `yaml:"owner"`
}

type ownershipConfig struct {
	Sections []SectionRule `yaml:"sections"`
	Fields   []FieldRule   `yaml:"fields"`
}

// Policy answers "may this role edit this control" and derives rendering
// directives for the form layer. It holds no mutable state.
type Policy struct {
	sections     []SectionRule
	fields       []FieldRule
	fieldByName  map[string]FieldRule
	sectionByKey map[string]SectionRule
}

// NewPolicy parses the embedded ownership table.
func NewPolicy() (*Policy, error) {
	var cfg ownershipConfig
	if err := yaml.Unmarshal(ownershipYAML, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse ownership table: %w", err)
	}

	p := &Policy{
		sections:     cfg.Sections,
		fields:       cfg.Fields,
		fieldByName:  make(map[string]FieldRule, len(cfg.Fields)),
		sectionByKey: make(map[string]SectionRule, len(cfg.Sections)),
	}
	for _, s := range cfg.Sections {
		if !models.IsValidRole(s.Owner) {
			return nil, fmt.Errorf("section %q: unknown owner role %q", s.Key, s.Owner)
		}
		p.sectionByKey[s.Key] = s
	}
	for _, f := range cfg.Fields {
		if !models.IsValidRole(f.Owner) {
			return nil, fmt.Errorf("field %q: unknown owner role %q", f.Name, f.Owner)
		}
		if _, ok := p.sectionByKey[f.Section]; !ok {
			return nil, fmt.Errorf("field %q: unknown section %q", f.Name, f.Section)
		}
		p.fieldByName[f.Name] = f
	}
	return p, nil
}

// CanEdit is the authorization predicate: strict role equality, no blanket
// override for any role, approved sections included.
func (p *Policy) CanEdit(current, owner models.Role) bool {
	return current == owner
}

// FieldOwner returns the owning role for a field name.
func (p *Policy) FieldOwner(name string) (models.Role, bool) {
	f, ok := p.fieldByName[name]
	if !ok {
		return "", false
	}
	return f.Owner, true
}

// CanEditField reports whether role may edit the named field, and the owner.
// Unknown fields are denied; every editable control must be declared.
func (p *Policy) CanEditField(role models.Role, name string) (bool, models.Role) {
	f, ok := p.fieldByName[name]
	if !ok {
		return false, ""
	}
	return p.CanEdit(role, f.Owner), f.Owner
}

// Fields returns all declared field rules.
func (p *Policy) Fields() []FieldRule {
	return p.fields
}

// Sections returns all declared section rules.
func (p *Policy) Sections() []SectionRule {
	return p.sections
}

// ControlState is a rendering directive for one control: disabled or not,
// with a message naming the owning role when disabled. The policy produces
// these; a rendering adapter consumes them.
type ControlState struct {
	Name     string      `json:"name"`
	Section  string      `json:"section"`
	Owner    models.Role `json:"owner"`
	Disabled bool        `json:"disabled"`
	Message  string      `json:"message,omitempty"`
}

// ControlStates derives the rendering directives for every declared field
// given the current role. Re-evaluated on every role change and product load.
func (p *Policy) ControlStates(role models.Role) []ControlState {
	states := make([]ControlState, 0, len(p.fields))
	for _, f := range p.fields {
		cs := ControlState{Name: f.Name, Section: f.Section, Owner: f.Owner}
		if !p.CanEdit(role, f.Owner) {
			cs.Disabled = true
			cs.Message = fmt.Sprintf("Это поле заполняет %s", f.Owner)
		}
		states = append(states, cs)
	}
	return states
}

var tagPattern = regexp.MustCompile(`<[^>]*>|&nbsp;`)

// Validate checks the required fields owned by the sending role against the
// product's field values. Fields owned by other roles are deliberately
// skipped so one role is never blocked by another role's incomplete work.
// Missing fields are collected into a single ValidationError.
func (p *Policy) Validate(role models.Role, data map[string]any) error {
	var missing []string
	for _, f := range p.fields {
		if !f.Required || f.Owner != role {
			continue
		}
		if !present(f.Kind, data[f.Name]) {
			missing = append(missing, f.Name)
		}
	}
	if len(missing) > 0 {
		return &apperrors.ValidationError{Role: role.String(), Fields: missing}
	}
	return nil
}

func present(kind FieldKind, value any) bool {
	switch kind {
	case KindMulti:
		switch v := value.(type) {
		case []string:
			return len(v) > 0
		case []any:
			return len(v) > 0
		default:
			return false
		}
	case KindRichText:
		s, _ := value.(string)
		return strings.TrimSpace(tagPattern.ReplaceAllString(s, "")) != ""
	default:
		s, ok := value.(string)
		if ok {
			return strings.TrimSpace(s) != ""
		}
		return value != nil
	}
}
