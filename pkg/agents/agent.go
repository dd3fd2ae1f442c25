// Package agents discovers and loads agent documents: persona/playbook
// specifications for a code-generation assistant. An agent document
// carries richer front matter than a skill (identity, trigger phrases,
// capability list) and one or more output templates the assistant is
// expected to fill in.
package agents

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/skillet-ai/skillet/pkg/catalog"
	"github.com/skillet-ai/skillet/pkg/frontmatter"
	"github.com/skillet-ai/skillet/pkg/logger"
)

// Recognized tier values, in increasing specialization order.
const (
	TierCore       = "core"
	TierSpecialist = "specialist"
	TierDomain     = "domain"
)

// Metadata is the front matter of an agent document.
type Metadata struct {
	ID           string   `yaml:"id"`
	Name         string   `yaml:"name"`
	Description  string   `yaml:"description"`
	Tier         string   `yaml:"tier"`
	Domain       string   `yaml:"domain"`
	Triggers     []string `yaml:"triggers"`
	Capabilities []string `yaml:"capabilities"`
}

// Template is one named output template from an agent document body.
type Template struct {
	Name string
	Body string
}

// Agent is a loaded agent document.
type Agent struct {
	Metadata  Metadata
	Body      string
	Templates []Template
	Plugin    string
	Path      string
}

// Template returns the named output template, or the only one when name
// is empty and the agent has exactly one.
func (a *Agent) Template(name string) (*Template, error) {
	if name == "" {
		if len(a.Templates) == 1 {
			return &a.Templates[0], nil
		}
		return nil, errors.Errorf("agent '%s' has %d templates, specify one by name", a.Metadata.Name, len(a.Templates))
	}
	for i := range a.Templates {
		if a.Templates[i].Name == name {
			return &a.Templates[i], nil
		}
	}
	return nil, errors.Errorf("agent '%s' has no template '%s'", a.Metadata.Name, name)
}

// Loader discovers and loads agent documents across catalog sources.
type Loader struct {
	sources []catalog.Source
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader) error

// WithSources sets explicit catalog sources.
func WithSources(sources ...catalog.Source) LoaderOption {
	return func(l *Loader) error {
		l.sources = sources
		return nil
	}
}

// WithCatalogDirs treats each directory as a standalone catalog root.
func WithCatalogDirs(dirs ...string) LoaderOption {
	return func(l *Loader) error {
		l.sources = l.sources[:0]
		for _, dir := range dirs {
			l.sources = append(l.sources, catalog.Source{Root: dir})
		}
		return nil
	}
}

// WithDefaultDirs resolves sources from the default catalog roots.
func WithDefaultDirs() LoaderOption {
	return func(l *Loader) error {
		cd, err := catalog.NewDiscovery()
		if err != nil {
			return err
		}
		l.sources = cd.Sources()
		return nil
	}
}

// NewLoader creates an agent loader. Without options the default catalog
// roots are used.
func NewLoader(opts ...LoaderOption) (*Loader, error) {
	l := &Loader{}

	if len(opts) == 0 {
		if err := WithDefaultDirs()(l); err != nil {
			return nil, err
		}
		return l, nil
	}

	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// ListAgents loads every agent document, precedence order, first name
// wins. Unloadable documents are logged and skipped.
func (l *Loader) ListAgents(ctx context.Context) ([]*Agent, error) {
	var agents []*Agent
	seen := make(map[string]bool)

	for _, src := range l.sources {
		_ = catalog.WalkDocuments(src, catalog.KindAgent, func(path string, loc catalog.Location) error {
			agent, err := loadAgent(path, loc)
			if err != nil {
				logger.G(ctx).WithField("path", path).WithError(err).Debug("Failed to load agent, skipping")
				return nil
			}

			agent.Metadata.Name = src.Prefix + agent.Metadata.Name
			if !seen[agent.Metadata.Name] {
				agents = append(agents, agent)
				seen[agent.Metadata.Name] = true
			}
			return nil
		})
	}

	logger.G(ctx).WithField("count", len(agents)).Debug("Loaded agents")
	return agents, nil
}

// GetAgent loads a single agent by catalog name.
func (l *Loader) GetAgent(ctx context.Context, name string) (*Agent, error) {
	agents, err := l.ListAgents(ctx)
	if err != nil {
		return nil, err
	}
	for _, agent := range agents {
		if agent.Metadata.Name == name {
			return agent, nil
		}
	}
	return nil, errors.Errorf("agent '%s' not found", name)
}

// loadAgent reads one agent document and extracts its metadata and output
// templates.
func loadAgent(path string, loc catalog.Location) (*Agent, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read agent file")
	}

	meta, body, err := frontmatter.Parse(content)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse frontmatter")
	}

	md := Metadata{
		ID:           meta.String("id"),
		Name:         meta.String("name"),
		Description:  meta.String("description"),
		Tier:         meta.String("tier"),
		Domain:       meta.String("domain"),
		Triggers:     meta.StringList("triggers"),
		Capabilities: meta.StringList("capabilities"),
	}

	if md.Name == "" {
		md.Name = strings.TrimSuffix(filepath.Base(path), ".md")
	}
	if md.ID == "" {
		md.ID = md.Name
	}
	if md.Domain == "" {
		md.Domain = loc.Domain
	}

	return &Agent{
		Metadata:  md,
		Body:      body,
		Templates: extractTemplates(body),
		Plugin:    loc.Plugin,
		Path:      path,
	}, nil
}

// ValidateAgent checks that an agent document is usable by a host: it has
// an identity, its triggers are well-formed, and its tier (when present)
// is a recognized value.
func ValidateAgent(agent *Agent) error {
	if agent.Metadata.ID == "" {
		return errors.New("agent id is required")
	}
	if agent.Metadata.Name == "" {
		return errors.New("agent name is required")
	}
	for _, trigger := range agent.Metadata.Triggers {
		if strings.TrimSpace(trigger) == "" {
			return errors.New("agent triggers must be non-empty strings")
		}
	}
	switch agent.Metadata.Tier {
	case "", TierCore, TierSpecialist, TierDomain:
	default:
		return errors.Errorf("invalid tier '%s', must be one of: %s, %s, %s",
			agent.Metadata.Tier, TierCore, TierSpecialist, TierDomain)
	}
	if strings.TrimSpace(agent.Body) == "" {
		return errors.New("agent body cannot be empty")
	}
	return nil
}

// extractTemplates collects fenced blocks whose info string is "template",
// optionally followed by a name. Unnamed templates are numbered in order
// of appearance.
func extractTemplates(body string) []Template {
	var (
		templates []Template
		current   []string
		name      string
		inBlock   bool
	)

	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)

		if !inBlock {
			rest, ok := strings.CutPrefix(trimmed, "```template")
			if !ok {
				continue
			}
			inBlock = true
			name = strings.TrimSpace(rest)
			current = current[:0]
			continue
		}

		if trimmed == "```" {
			inBlock = false
			if name == "" {
				name = defaultTemplateName(len(templates))
			}
			templates = append(templates, Template{
				Name: name,
				Body: strings.Join(current, "\n"),
			})
			continue
		}

		current = append(current, line)
	}

	return templates
}

func defaultTemplateName(index int) string {
	if index == 0 {
		return "default"
	}
	return fmt.Sprintf("template-%d", index+1)
}
