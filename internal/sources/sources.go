// Package sources loads the source registry: which feeds are pulled
// into which section, plus the keyword rules the classifier runs on.
// The registry is read once at startup and never mutated.
package sources

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Source is a single feed endpoint inside a section.
type Source struct {
	Name   string `yaml:"name"`
	URL    string `yaml:"url"`
	Locale string `yaml:"locale"`
}

// Section describes one block of the rendered page.
type Section struct {
	ID       string `yaml:"id"`
	Title    string `yaml:"title"`
	MaxItems int    `yaml:"max_items"`
}

// Scoring holds the include/exclude keyword lists.
type Scoring struct {
	PositiveKeywords []string `yaml:"positive_keywords"`
	NegativeKeywords []string `yaml:"negative_keywords"`
}

// Filters is the data-driven classification config. Hard blacklist
// entries veto an article outright; scoring keywords only shift the
// graded score against the per-section threshold.
type Filters struct {
	HardBlacklist         []string       `yaml:"hard_blacklist"`
	MedicalExtraBlacklist []string       `yaml:"medical_extra_blacklist"`
	Thresholds            map[string]int `yaml:"thresholds"`
	Scoring               Scoring        `yaml:"scoring"`
}

// Satire configures the optional satire block. When the source has no
// RSS feed the homepage is scraped instead.
type Satire struct {
	Enabled  bool   `yaml:"enabled"`
	Name     string `yaml:"name"`
	FeedURL  string `yaml:"feed_url"`
	Homepage string `yaml:"homepage"`
	MaxItems int    `yaml:"max_items"`
}

// Photos configures the optional photo block (og:image extraction).
type Photos struct {
	Enabled  bool `yaml:"enabled"`
	MaxItems int  `yaml:"max_items"`
}

// Registry is the full parsed sources.yml.
type Registry struct {
	Sections      []Section           `yaml:"sections"`
	RSSSources    map[string][]Source `yaml:"rss_sources"`
	Filters       Filters             `yaml:"filters"`
	RomanianHosts []string            `yaml:"romanian_hosts"`
	Satire        Satire              `yaml:"satire"`
	Photos        Photos              `yaml:"photos"`
}

// Load reads and validates the registry from a YAML file.
func Load(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sources config: %w", err)
	}
	defer f.Close()

	var reg Registry
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&reg); err != nil {
		return nil, fmt.Errorf("parse sources config: %w", err)
	}

	if err := reg.Validate(); err != nil {
		return nil, err
	}
	return &reg, nil
}

// Validate checks structural and locale invariants at load time.
// A locale "ro" source must point at a Romanian-origin endpoint;
// a violation fails the whole load rather than silently dropping it.
func (r *Registry) Validate() error {
	if len(r.RSSSources) == 0 {
		return fmt.Errorf("sources config: no rss_sources defined")
	}

	known := make(map[string]bool, len(r.Sections))
	for _, s := range r.Sections {
		if s.ID == "" {
			return fmt.Errorf("sources config: section without id")
		}
		if known[s.ID] {
			return fmt.Errorf("sources config: duplicate section %q", s.ID)
		}
		known[s.ID] = true
	}

	for sectionID, srcs := range r.RSSSources {
		if !known[sectionID] {
			return fmt.Errorf("sources config: rss_sources references unknown section %q", sectionID)
		}
		for _, src := range srcs {
			if strings.TrimSpace(src.URL) == "" {
				return fmt.Errorf("sources config: source %q in section %q has no url", src.Name, sectionID)
			}
			u, err := url.Parse(src.URL)
			if err != nil || u.Host == "" {
				return fmt.Errorf("sources config: source %q has invalid url %q", src.Name, src.URL)
			}
			if strings.EqualFold(src.Locale, "ro") && !r.isRomanianHost(u.Hostname()) {
				return fmt.Errorf("sources config: source %q has locale ro but non-Romanian host %q", src.Name, u.Hostname())
			}
		}
	}

	if r.Satire.Enabled && r.Satire.FeedURL == "" && r.Satire.Homepage == "" {
		return fmt.Errorf("sources config: satire enabled but neither feed_url nor homepage set")
	}

	return nil
}

// isRomanianHost accepts *.ro hosts plus any host from the
// romanian_hosts allow-list (Romanian outlets on generic TLDs).
func (r *Registry) isRomanianHost(host string) bool {
	host = strings.ToLower(strings.TrimPrefix(host, "www."))
	if host == "ro" || strings.HasSuffix(host, ".ro") {
		return true
	}
	for _, allowed := range r.RomanianHosts {
		allowed = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(allowed), "www."))
		if allowed != "" && (host == allowed || strings.HasSuffix(host, "."+allowed)) {
			return true
		}
	}
	return false
}

// MaxItems returns the configured item cap for a section (default 20).
func (r *Registry) MaxItems(sectionID string) int {
	for _, s := range r.Sections {
		if s.ID == sectionID {
			if s.MaxItems > 0 {
				return s.MaxItems
			}
			break
		}
	}
	return 20
}

// Threshold returns the minimum score a section's articles must reach.
func (r *Registry) Threshold(sectionID string) int {
	return r.Filters.Thresholds[sectionID]
}
