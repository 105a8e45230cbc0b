package siteconfig

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"gopkg.in/yaml.v3"
)

// HeadTag is an extra element injected into the page <head>.
// It serializes as a tuple: [name, attrs] or [name, attrs, content].
type HeadTag struct {
	Name    string
	Attrs   map[string]string
	Content string
}

// Attr pairs an attribute name with its value.
type Attr struct {
	Key   string
	Value string
}

// SortedAttrs returns the attributes ordered by name.
func (t HeadTag) SortedAttrs() []Attr {
	keys := slices.Sorted(maps.Keys(t.Attrs))
	attrs := make([]Attr, 0, len(keys))
	for _, key := range keys {
		attrs = append(attrs, Attr{Key: key, Value: t.Attrs[key]})
	}
	return attrs
}

func (t HeadTag) clone() HeadTag {
	out := HeadTag{Name: t.Name, Content: t.Content}
	if t.Attrs != nil {
		out.Attrs = maps.Clone(t.Attrs)
	}
	return out
}

func (t HeadTag) tuple() []any {
	attrs := t.Attrs
	if attrs == nil {
		attrs = map[string]string{}
	}
	if t.Content != "" {
		return []any{t.Name, attrs, t.Content}
	}
	return []any{t.Name, attrs}
}

func (t HeadTag) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.tuple())
}

func (t *HeadTag) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("head tag: %w", err)
	}
	if len(parts) < 2 || len(parts) > 3 {
		return fmt.Errorf("head tag: expected 2 or 3 elements, got %d", len(parts))
	}

	var decoded HeadTag
	if err := json.Unmarshal(parts[0], &decoded.Name); err != nil {
		return fmt.Errorf("head tag name: %w", err)
	}
	if err := json.Unmarshal(parts[1], &decoded.Attrs); err != nil {
		return fmt.Errorf("head tag %q attributes: %w", decoded.Name, err)
	}
	if len(parts) == 3 {
		if err := json.Unmarshal(parts[2], &decoded.Content); err != nil {
			return fmt.Errorf("head tag %q content: %w", decoded.Name, err)
		}
	}
	*t = decoded
	return nil
}

func (t HeadTag) MarshalYAML() (any, error) {
	return t.tuple(), nil
}

func (t *HeadTag) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		return fmt.Errorf("head tag: line %d: expected a sequence", node.Line)
	}
	if n := len(node.Content); n < 2 || n > 3 {
		return fmt.Errorf("head tag: line %d: expected 2 or 3 elements, got %d", node.Line, n)
	}

	var decoded HeadTag
	if err := node.Content[0].Decode(&decoded.Name); err != nil {
		return fmt.Errorf("head tag name: %w", err)
	}
	if err := node.Content[1].Decode(&decoded.Attrs); err != nil {
		return fmt.Errorf("head tag %q attributes: %w", decoded.Name, err)
	}
	if len(node.Content) == 3 {
		if err := node.Content[2].Decode(&decoded.Content); err != nil {
			return fmt.Errorf("head tag %q content: %w", decoded.Name, err)
		}
	}
	*t = decoded
	return nil
}
