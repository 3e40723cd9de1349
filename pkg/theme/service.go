package theme

import (
	"fmt"
	"sort"
)

// Service resolves stock and custom themes.
type Service struct {
	custom map[string]CustomTheme
}

// NewService validates the custom themes and builds a lookup service.
func NewService(custom []CustomTheme) (*Service, error) {
	s := &Service{custom: make(map[string]CustomTheme, len(custom))}
	for _, c := range custom {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if _, dup := s.custom[c.Name]; dup {
			return nil, fmt.Errorf("duplicate custom theme %q", c.Name)
		}
		s.custom[c.Name] = c
	}
	return s, nil
}

// IsStock reports whether name is a built-in theme.
func (s *Service) IsStock(name string) bool {
	return IsStock(name)
}

// Custom returns the custom theme registered under name.
func (s *Service) Custom(name string) (CustomTheme, bool) {
	if s == nil {
		return CustomTheme{}, false
	}
	c, ok := s.custom[name]
	return c, ok
}

// CustomNames returns registered custom theme names, sorted.
func (s *Service) CustomNames() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.custom))
	for n := range s.custom {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Ref builds the lookup reference for a theme name.
func (s *Service) Ref(name string) ThemeRef {
	if c, ok := s.Custom(name); ok {
		return ThemeRef{Name: name, Custom: &c}
	}
	return ThemeRef{Name: name}
}

// Lookup resolves ref to a theme. Unknown stock names resolve to the default
// theme; custom themes start from their base theme and apply the palette
// override.
func (s *Service) Lookup(ref ThemeRef) Theme {
	if ref.Custom == nil {
		return stock(ref.Name)
	}
	base := ref.Custom.BaseTheme
	if base == "" {
		base = DefaultName
	}
	t := stock(base)
	t.Name = ref.Custom.Name
	if p := ref.Custom.Palette(); p != nil {
		t.Palette = *p
	}
	return t
}
