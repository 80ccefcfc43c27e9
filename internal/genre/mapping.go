// Package genre canonicalizes near-duplicate category labels through a fixed,
// hand-curated lookup table.
package genre

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// defaultAliases folds case variants and near-synonyms found in the category
// source into one label. Anything not listed passes through unchanged.
//
//nolint:gochecknoglobals // Static lookup table for genre normalization
var defaultAliases = map[string]string{
	"BIOGRAPHY & AUTOBIOGRAPHY":               "Biography & Autobiography",
	"Political science":                       "Political Science",
	"Political leadership":                    "Political Science",
	"Political fiction":                       "Political Science",
	"Literary Criticism & Collections":        "Literary Criticism",
	"LITERARY CRITICISM":                      "Literary Criticism",
	"JUVENILE FICTION":                        "Juvenile Fiction",
	"Humorous stories, American":              "Humor",
	"Humorous stories":                        "Humor",
	"Humorous stories, English":               "Humor",
	"Humorous fiction":                        "Humor",
	"Comedy":                                  "Humor",
	"Detective and mystery stories, American": "Detective and mystery stories",
	"Detective and mystery stories, English":  "Detective and mystery stories",
}

// Mapping is an immutable raw -> canonical category table.
type Mapping struct {
	aliases map[string]string
}

// FileConfig is the YAML shape of a mapping override file.
//
//	replace: false
//	aliases:
//	  "Sci-fi": "Science Fiction"
type FileConfig struct {
	// Replace discards the built-in table instead of extending it.
	Replace bool              `yaml:"replace"`
	Aliases map[string]string `yaml:"aliases"`
}

// Default returns the built-in mapping.
func Default() *Mapping {
	m, err := New(defaultAliases)
	if err != nil {
		// The built-in table is checked by tests.
		panic(err)
	}
	return m
}

// New builds a mapping from raw -> canonical pairs. Keys and values are trimmed.
// A canonical label may not itself be remapped to something else, so applying
// the mapping twice gives the same result as applying it once.
func New(aliases map[string]string) (*Mapping, error) {
	m := &Mapping{aliases: make(map[string]string, len(aliases))}
	for raw, canonical := range aliases {
		raw, canonical = strings.TrimSpace(raw), strings.TrimSpace(canonical)
		if raw == "" || canonical == "" {
			return nil, fmt.Errorf("genre alias %q -> %q: empty label", raw, canonical)
		}
		m.aliases[raw] = canonical
	}

	for _, raw := range slices.Sorted(maps.Keys(m.aliases)) {
		canonical := m.aliases[raw]
		if next, ok := m.aliases[canonical]; ok && next != canonical {
			return nil, fmt.Errorf("genre alias %q -> %q is not canonical: %q maps to %q", raw, canonical, canonical, next)
		}
	}
	return m, nil
}

// LoadFile reads a YAML override file and merges it over the built-in table,
// or replaces the table when the file sets replace: true.
func LoadFile(path string) (*Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read genre map: %w", err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse genre map %s: %w", path, err)
	}

	aliases := make(map[string]string, len(defaultAliases)+len(cfg.Aliases))
	if !cfg.Replace {
		maps.Copy(aliases, defaultAliases)
	}
	maps.Copy(aliases, cfg.Aliases)

	m, err := New(aliases)
	if err != nil {
		return nil, fmt.Errorf("invalid genre map %s: %w", path, err)
	}
	return m, nil
}

// Normalize returns the canonical label for raw, or raw (trimmed) if unmapped.
func (m *Mapping) Normalize(raw string) string {
	raw = strings.TrimSpace(raw)
	if canonical, ok := m.aliases[raw]; ok {
		return canonical
	}
	return raw
}

// Len returns the number of aliases.
func (m *Mapping) Len() int {
	return len(m.aliases)
}

// Aliases returns a copy of the table.
func (m *Mapping) Aliases() map[string]string {
	return maps.Clone(m.aliases)
}
