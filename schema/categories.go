package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// UnmarshalYAML accepts either a mapping of name -> category (document order
// is kept) or a sequence of categories that carry their own name.
func (c *Categories) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		var list []CategoryConfig
		if err := node.Decode(&list); err != nil {
			return err
		}
		*c = list
		return nil

	case yaml.MappingNode:
		list := make([]CategoryConfig, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			keyNode, valueNode := node.Content[i], node.Content[i+1]
			var cat CategoryConfig
			if err := valueNode.Decode(&cat); err != nil {
				return fmt.Errorf("category %q: %w", keyNode.Value, err)
			}
			if cat.Name != "" && cat.Name != keyNode.Value {
				return fmt.Errorf("category %q: name field %q does not match its key", keyNode.Value, cat.Name)
			}
			cat.Name = keyNode.Value
			list = append(list, cat)
		}
		*c = list
		return nil

	default:
		return fmt.Errorf("line %d: categories must be a mapping or a sequence", node.Line)
	}
}

// MarshalYAML writes categories back as an ordered mapping.
func (c Categories) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, cat := range c {
		body := cat
		body.Name = ""
		var value yaml.Node
		if err := value.Encode(body); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: cat.Name}, &value)
	}
	return node, nil
}

// UnmarshalJSON accepts the same two shapes as UnmarshalYAML. Object keys are
// read in document order.
func (c *Categories) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		var list []CategoryConfig
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*c = list
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if _, err := dec.Token(); err != nil {
		return err
	}
	var list []CategoryConfig
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		var cat CategoryConfig
		if err := dec.Decode(&cat); err != nil {
			return fmt.Errorf("category %q: %w", key, err)
		}
		if cat.Name != "" && cat.Name != key {
			return fmt.Errorf("category %q: name field %q does not match its key", key, cat.Name)
		}
		cat.Name = key
		list = append(list, cat)
	}
	*c = list
	return nil
}

// Lookup returns the category with the given name.
func (c Categories) Lookup(name string) (CategoryConfig, bool) {
	for _, cat := range c {
		if cat.Name == name {
			return cat, true
		}
	}
	return CategoryConfig{}, false
}
