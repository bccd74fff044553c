// Package navigation holds the console's side menu and filters it by the operator's
// permissions.
package navigation

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
	"penalty-console/internal/application/permission"
)

//go:embed menu.yaml
var defaultMenu []byte

type Item struct {
	Title    string                 `yaml:"title" json:"title"`
	Path     string                 `yaml:"path" json:"path,omitempty"`
	Icon     string                 `yaml:"icon" json:"icon,omitempty"`
	Require  permission.Requirement `yaml:"require" json:"-"`
	Children []Item                 `yaml:"children" json:"children,omitempty"`
}

type Menu struct {
	Items []Item `yaml:"items"`
}

func Load(data []byte) (*Menu, error) {
	var m Menu
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse menu: %w", err)
	}
	for _, it := range m.Items {
		if err := check(it); err != nil {
			return nil, err
		}
	}
	return &m, nil
}

func Default() (*Menu, error) {
	return Load(defaultMenu)
}

func check(it Item) error {
	if it.Title == "" {
		return fmt.Errorf("menu item without title")
	}
	if it.Path == "" && len(it.Children) == 0 {
		return fmt.Errorf("menu item %q has neither path nor children", it.Title)
	}
	for _, c := range it.Children {
		if err := check(c); err != nil {
			return err
		}
	}
	return nil
}

// Visible returns the items the permission set allows. A group whose children are all
// hidden is hidden too.
func (m *Menu) Visible(perms permission.Set) []Item {
	return visible(m.Items, perms)
}

func visible(items []Item, perms permission.Set) []Item {
	out := []Item{}
	for _, it := range items {
		if !it.Require.Allows(perms) {
			continue
		}
		if len(it.Children) > 0 {
			it.Children = visible(it.Children, perms)
			if len(it.Children) == 0 {
				continue
			}
		}
		out = append(out, it)
	}
	return out
}

// Paths lists every routable path in the menu.
func (m *Menu) Paths() []string {
	var out []string
	var walk func([]Item)
	walk = func(items []Item) {
		for _, it := range items {
			if it.Path != "" {
				out = append(out, it.Path)
			}
			walk(it.Children)
		}
	}
	walk(m.Items)
	return out
}
