// Package parser reads the YAML navigation manifest and extracts fenced code
// from cookbook Markdown.
package parser

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const navKey = "nav"

var (
	ErrNoNav     = errors.New("parser: manifest has no nav section")
	ErrNavShape  = errors.New("parser: nav section is not a sequence")
	errEmptyYAML = errors.New("parser: manifest is empty")
)

// NavItem is one element of the navigation tree: either a leaf (Label → Path)
// or a group (Label → Children).
type NavItem struct {
	Label    string
	Path     string
	Children []NavItem
	Group    bool
}

// Navigation is the parsed nav section of the manifest, in declared order.
type Navigation struct {
	Items []NavItem
}

// ParseManifest decodes a manifest and returns its nav tree. The document is
// walked as a yaml.Node tree so custom tags elsewhere in the file (mkdocs
// uses !!python/name and !ENV) do not need to be resolvable.
func ParseManifest(data []byte) (*Navigation, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parser: decode manifest: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, errEmptyYAML
	}
	root := resolve(doc.Content[0])
	if root.Kind != yaml.MappingNode {
		return nil, ErrNoNav
	}

	var nav *yaml.Node
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value == navKey {
			nav = resolve(root.Content[i+1])
			break
		}
	}
	if nav == nil {
		return nil, ErrNoNav
	}
	if nav.Kind != yaml.SequenceNode {
		return nil, ErrNavShape
	}

	items, err := parseItems(nav)
	if err != nil {
		return nil, err
	}
	return &Navigation{Items: items}, nil
}

// parseItems converts a nav sequence. Groups and leaves may be interleaved.
func parseItems(seq *yaml.Node) ([]NavItem, error) {
	out := make([]NavItem, 0, len(seq.Content))
	for _, raw := range seq.Content {
		n := resolve(raw)
		switch n.Kind {
		case yaml.ScalarNode:
			// "- page.md" without a label.
			out = append(out, NavItem{Path: scalar(n)})
		case yaml.MappingNode:
			for i := 0; i+1 < len(n.Content); i += 2 {
				item, err := parseEntry(n.Content[i], n.Content[i+1])
				if err != nil {
					return nil, err
				}
				out = append(out, item)
			}
		default:
			return nil, fmt.Errorf("parser: unexpected nav item at line %d", n.Line)
		}
	}
	return out, nil
}

func parseEntry(key, value *yaml.Node) (NavItem, error) {
	label := strings.TrimSpace(resolve(key).Value)
	v := resolve(value)
	switch v.Kind {
	case yaml.SequenceNode:
		children, err := parseItems(v)
		if err != nil {
			return NavItem{}, err
		}
		return NavItem{Label: label, Children: children, Group: true}, nil
	case yaml.ScalarNode:
		return NavItem{Label: label, Path: scalar(v)}, nil
	default:
		return NavItem{}, fmt.Errorf("parser: nav entry %q at line %d has unsupported value", label, v.Line)
	}
}

// Group returns the first top-level group whose label equals name.
func (n *Navigation) Group(name string) (NavItem, bool) {
	if n == nil {
		return NavItem{}, false
	}
	for _, it := range n.Items {
		if it.Group && it.Label == name {
			return it, true
		}
	}
	return NavItem{}, false
}

func scalar(n *yaml.Node) string {
	if n.Tag == "!!null" {
		return ""
	}
	return strings.TrimSpace(n.Value)
}

func resolve(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}
