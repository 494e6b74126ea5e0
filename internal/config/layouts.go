package config

import (
	"fmt"

	"github.com/anprowh/LanguageCorrector/internal/layout"
)

// BuildRegistry resolves the active layouts, in priority order, from the
// built-in layouts and the config file's custom ones.
func BuildRegistry(custom []CustomLayout, active []string) (*layout.Registry, error) {
	if len(active) < 2 {
		return nil, fmt.Errorf("at least two active layouts are required, got %d", len(active))
	}
	available := layout.Builtin()
	for _, c := range custom {
		l, err := layout.Custom(c.ID, c.Name, c.Keys, c.Letters)
		if err != nil {
			return nil, err
		}
		available = append(available, l)
	}
	byID := make(map[layout.ID]layout.Layout, len(available))
	for _, l := range available {
		if _, ok := byID[l.ID]; ok {
			return nil, fmt.Errorf("layout %s is defined twice", l.ID)
		}
		byID[l.ID] = l
	}
	picked := make([]layout.Layout, 0, len(active))
	for _, id := range active {
		l, ok := byID[layout.ID(id)]
		if !ok {
			return nil, fmt.Errorf("unknown layout %q", id)
		}
		picked = append(picked, l)
	}
	reg, err := layout.NewRegistry(picked...)
	if err != nil {
		return nil, fmt.Errorf("failed to build layouts: %w", err)
	}
	return reg, nil
}
