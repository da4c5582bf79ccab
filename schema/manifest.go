package schema

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Manifest maps a logical resource path to its content-hash token.
// It is produced at build time and never mutated once loaded.
type Manifest map[string]string

// Paths returns the manifest paths in sorted order.
func (m Manifest) Paths() []string {
	paths := make([]string, 0, len(m))
	for p := range m {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return paths
}

// Validate checks that every entry has a path and a hash token, and that no
// two paths collapse onto the same cache key. An empty manifest is valid.
func (m Manifest) Validate() error {
	keys := make(map[string]string, len(m))
	for _, p := range m.Paths() {
		if strings.TrimSpace(p) == "" {
			return errors.New("manifest contains an empty path")
		}
		if strings.TrimSpace(m[p]) == "" {
			return fmt.Errorf("manifest entry %q has an empty hash", p)
		}
		key := NormalizeKey(p)
		if prev, ok := keys[key]; ok {
			return fmt.Errorf("manifest paths %q and %q map to the same key %q", prev, p, key)
		}
		keys[key] = p
	}
	return nil
}
