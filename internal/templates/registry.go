// Package templates holds the catalog of render templates and validates
// submitted job descriptors against it.
package templates

import (
	"fmt"
	"sort"
	"strings"

	apperrors "clipforge/internal/pkg/errors"
)

// PropKind is the declared type of a template property.
type PropKind string

const (
	PropString PropKind = "string"
	PropColor  PropKind = "color"
	PropNumber PropKind = "number"
)

// Prop declares one customizable property of a template.
type Prop struct {
	Name        string   `json:"name"`
	Kind        PropKind `json:"type"`
	Description string   `json:"description"`
	Default     any      `json:"default"`
}

// Template describes one renderable composition: fixed duration, frame rate,
// dimensions and the properties a job may customize.
type Template struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	DurationFrames int    `json:"durationInFrames"`
	FPS            int    `json:"fps"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	Props          []Prop `json:"props"`
}

// Descriptor is a validated, enriched job input: the requested template plus
// the property bag with defaults filled in.
type Descriptor struct {
	Template Template
	Title    string
	Props    map[string]any
}

// Registry is the in-process template catalog.
type Registry struct {
	byID map[string]Template
}

// NewRegistry builds a registry from the given templates.
func NewRegistry(ts ...Template) *Registry {
	byID := make(map[string]Template, len(ts))
	for _, t := range ts {
		byID[t.ID] = t
	}
	return &Registry{byID: byID}
}

// Default returns the registry with the built-in catalog.
func Default() *Registry {
	return NewRegistry(builtin...)
}

// Get looks up a template by id.
func (r *Registry) Get(id string) (Template, error) {
	t, ok := r.byID[id]
	if !ok {
		return Template{}, apperrors.InvalidTemplate(id)
	}
	return t, nil
}

// All returns the catalog sorted by template id.
func (r *Registry) All() []Template {
	out := make([]Template, 0, len(r.byID))
	for _, t := range r.byID {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Validate checks a submitted descriptor against the catalog. Unknown
// templates and unknown properties are rejected; missing properties take the
// template's declared default. The returned descriptor carries the template's
// duration, frame rate and dimensions.
func (r *Registry) Validate(templateID, title string, props map[string]any) (Descriptor, error) {
	t, err := r.Get(strings.TrimSpace(templateID))
	if err != nil {
		return Descriptor{}, err
	}

	declared := make(map[string]Prop, len(t.Props))
	for _, p := range t.Props {
		declared[p.Name] = p
	}

	merged := make(map[string]any, len(t.Props))
	for name, p := range declared {
		merged[name] = p.Default
	}
	for name, v := range props {
		if _, ok := declared[name]; !ok {
			return Descriptor{}, apperrors.ValidationField(
				"props."+name,
				fmt.Sprintf("template %s has no property %q", t.ID, name),
			)
		}
		merged[name] = v
	}

	title = strings.TrimSpace(title)
	if title == "" {
		title = t.Name + " Video"
	}

	return Descriptor{Template: t, Title: title, Props: merged}, nil
}
