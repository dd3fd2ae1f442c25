package skills

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/skillet-ai/skillet/pkg/catalog"
	"github.com/skillet-ai/skillet/pkg/frontmatter"
)

// Discovery finds skill documents across catalog sources.
type Discovery struct {
	sources []catalog.Source
}

// Option configures a Discovery.
type Option func(*Discovery) error

// WithSources sets explicit catalog sources.
func WithSources(sources ...catalog.Source) Option {
	return func(d *Discovery) error {
		d.sources = sources
		return nil
	}
}

// WithCatalogDirs treats each directory as a standalone catalog root.
func WithCatalogDirs(dirs ...string) Option {
	return func(d *Discovery) error {
		d.sources = d.sources[:0]
		for _, dir := range dirs {
			d.sources = append(d.sources, catalog.Source{Root: dir})
		}
		return nil
	}
}

// WithDefaultDirs resolves sources from the default repo-local and
// user-global catalog roots, plugins included.
func WithDefaultDirs() Option {
	return func(d *Discovery) error {
		cd, err := catalog.NewDiscovery()
		if err != nil {
			return err
		}
		d.sources = cd.Sources()
		return nil
	}
}

// NewDiscovery creates a skill discovery instance. Without options the
// default catalog roots are used.
func NewDiscovery(opts ...Option) (*Discovery, error) {
	d := &Discovery{}

	if len(opts) == 0 {
		if err := WithDefaultDirs()(d); err != nil {
			return nil, err
		}
		return d, nil
	}

	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// DiscoverSkills finds all skills across the configured sources. Sources
// are visited in precedence order and the first occurrence of a name wins.
// Documents that cannot be read or parsed are skipped; lint is where they
// surface.
func (d *Discovery) DiscoverSkills() (map[string]*Skill, error) {
	found := make(map[string]*Skill)

	for _, src := range d.sources {
		_ = catalog.WalkDocuments(src, catalog.KindSkill, func(path string, loc catalog.Location) error {
			skill, err := loadSkill(path, loc)
			if err != nil {
				return nil
			}

			skill.Name = src.Prefix + skill.Name
			if _, exists := found[skill.Name]; !exists {
				found[skill.Name] = skill
			}
			return nil
		})
	}

	return found, nil
}

// GetSkill returns a single skill by its catalog name.
func (d *Discovery) GetSkill(name string) (*Skill, error) {
	all, err := d.DiscoverSkills()
	if err != nil {
		return nil, err
	}

	skill, exists := all[name]
	if !exists {
		return nil, errors.Errorf("skill '%s' not found", name)
	}
	return skill, nil
}

// ListSkillNames returns the names of all discoverable skills.
func (d *Discovery) ListSkillNames() ([]string, error) {
	all, err := d.DiscoverSkills()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	return names, nil
}

// loadSkill reads one skill document. Header fields are optional: the
// name defaults to the file stem, applies_to and category default to what
// the path says.
func loadSkill(path string, loc catalog.Location) (*Skill, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read skill file")
	}

	meta, body, err := frontmatter.Parse(content)
	if err != nil {
		return nil, err
	}

	skill := &Skill{
		Name:        meta.String("name"),
		Description: meta.String("description"),
		AppliesTo:   meta.String("applies_to"),
		Category:    meta.String("category"),
		Plugin:      loc.Plugin,
		Domain:      loc.Domain,
		Layer:       loc.Layer,
		Path:        path,
		Content:     body,
	}

	if skill.Name == "" {
		skill.Name = strings.TrimSuffix(filepath.Base(path), ".md")
	}
	if skill.AppliesTo == "" {
		skill.AppliesTo = loc.Stack
	}
	if skill.Category == "" {
		skill.Category = loc.Category
	}

	return skill, nil
}

// FilterByAllowlist keeps only the named skills. An empty allowlist keeps
// everything.
func FilterByAllowlist(all map[string]*Skill, allowed []string) map[string]*Skill {
	if len(allowed) == 0 {
		return all
	}

	filtered := make(map[string]*Skill)
	for _, name := range allowed {
		if skill, exists := all[name]; exists {
			filtered[name] = skill
		}
	}
	return filtered
}
