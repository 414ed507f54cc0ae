package universe

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// Universe is the pair of ticker lists one run collects
// ⭐ SSOT: 수집 대상 종목 목록은 여기서만 주입
type Universe struct {
	Subgroup Group `yaml:"subgroup" json:"subgroup"`
	Index    Group `yaml:"index" json:"index"`
}

// Group is a named, ordered ticker list
type Group struct {
	Name    string   `yaml:"name" json:"name"`
	Tickers []string `yaml:"tickers" json:"tickers"`
}

// Default returns the embedded universe (magnificent7 within sp500)
func Default() (*Universe, error) {
	return Parse(defaultYAML)
}

// Load reads a universe YAML file; an empty path means Default
func Load(path string) (*Universe, error) {
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read universe file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates universe YAML.
// Unknown fields are rejected so typos fail loudly.
func Parse(data []byte) (*Universe, error) {
	var u Universe
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&u); err != nil {
		return nil, fmt.Errorf("decode universe: %w", err)
	}

	u.Subgroup.Tickers = normalize(u.Subgroup.Tickers)
	u.Index.Tickers = normalize(u.Index.Tickers)

	if err := u.Validate(); err != nil {
		return nil, err
	}
	return &u, nil
}

// Validate checks names and duplicate tickers.
// An empty subgroup is allowed here; the collector rejects it at run time.
func (u *Universe) Validate() error {
	if u.Subgroup.Name == "" {
		return fmt.Errorf("subgroup.name is required")
	}
	if strings.ContainsAny(u.Subgroup.Name, "/\\ ") {
		return fmt.Errorf("subgroup.name must not contain path separators or spaces: %q", u.Subgroup.Name)
	}
	if u.Index.Name == "" {
		return fmt.Errorf("index.name is required")
	}

	for _, g := range []Group{u.Subgroup, u.Index} {
		seen := make(map[string]struct{}, len(g.Tickers))
		for _, t := range g.Tickers {
			if _, dup := seen[t]; dup {
				return fmt.Errorf("%s: duplicate ticker %s", g.Name, t)
			}
			seen[t] = struct{}{}
		}
	}
	return nil
}

// WithIndex returns a copy of u whose index tickers are replaced
func (u Universe) WithIndex(tickers []string) *Universe {
	u.Index.Tickers = normalize(tickers)
	return &u
}

// normalize trims and upper-cases tickers, dropping blanks
func normalize(tickers []string) []string {
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
