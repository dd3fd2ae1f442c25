package catalog

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Discovery resolves catalog sources from the repo-local and user-global
// roots.
type Discovery struct {
	baseDir string // ".skillet" or an absolute override
	homeDir string
}

// DiscoveryOption configures a Discovery instance.
type DiscoveryOption func(*Discovery) error

// WithBaseDir overrides the repo-local catalog root.
func WithBaseDir(dir string) DiscoveryOption {
	return func(d *Discovery) error {
		d.baseDir = dir
		return nil
	}
}

// WithHomeDir overrides the user home directory.
func WithHomeDir(dir string) DiscoveryOption {
	return func(d *Discovery) error {
		d.homeDir = dir
		return nil
	}
}

// NewDiscovery creates a catalog discovery instance.
func NewDiscovery(opts ...DiscoveryOption) (*Discovery, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user home directory")
	}

	d := &Discovery{
		baseDir: SkilletDir,
		homeDir: homeDir,
	}

	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// Sources returns the document sources in precedence order. Earlier
// sources win on name collisions.
func (d *Discovery) Sources() []Source {
	var sources []Source

	sources = append(sources, Source{Root: d.baseDir})
	sources = append(sources, d.pluginSources(d.baseDir)...)

	globalRoot := filepath.Join(d.homeDir, SkilletDir)
	sources = append(sources, Source{Root: globalRoot})
	sources = append(sources, d.pluginSources(globalRoot)...)

	return sources
}

// pluginSources lists plugin sources under a catalog root. Plugin
// directories use "org@repo" naming on disk.
func (d *Discovery) pluginSources(root string) []Source {
	pluginsDir := filepath.Join(root, pluginsSubdir)
	entries, err := os.ReadDir(pluginsDir)
	if err != nil {
		return nil
	}

	var sources []Source
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		plugin := PluginNameToID(entry.Name())
		sources = append(sources, Source{
			Root:   filepath.Join(pluginsDir, entry.Name()),
			Plugin: plugin,
			Prefix: plugin + "/",
		})
	}
	return sources
}

// ListInstalledPlugins returns the installed plugin packages of one
// location, with their document names.
func (d *Discovery) ListInstalledPlugins(global bool) ([]InstalledPlugin, error) {
	root := d.baseDir
	if global {
		root = filepath.Join(d.homeDir, SkilletDir)
	}

	pluginsDir := filepath.Join(root, pluginsSubdir)
	entries, err := os.ReadDir(pluginsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to read plugins directory")
	}

	var plugins []InstalledPlugin
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		plugin := InstalledPlugin{
			Name: entry.Name(),
			Path: filepath.Join(pluginsDir, entry.Name()),
		}
		src := Source{Root: plugin.Path, Plugin: PluginNameToID(entry.Name())}

		_ = WalkDocuments(src, KindSkill, func(path string, _ Location) error {
			plugin.Skills = append(plugin.Skills, docName(src, path))
			return nil
		})
		_ = WalkDocuments(src, KindAgent, func(path string, _ Location) error {
			plugin.Agents = append(plugin.Agents, docName(src, path))
			return nil
		})

		if len(plugin.Skills) == 0 && len(plugin.Agents) == 0 {
			continue
		}
		plugins = append(plugins, plugin)
	}

	return plugins, nil
}

// WalkDocuments visits every markdown document of the given kind under a
// source, covering all three layout shapes: the standalone kind directory,
// the domain grouping, and the stack grouping. Unreadable subtrees are
// skipped, not failed: an empty catalog is a valid catalog.
func WalkDocuments(src Source, kind string, fn func(path string, loc Location) error) error {
	// Standalone <root>/<kind>/**/*.md; the first subdirectory, when
	// present, acts as the category.
	kindDir := filepath.Join(src.Root, kind)
	err := walkMarkdown(kindDir, func(path, rel string) error {
		loc := Location{Plugin: src.Plugin}
		if dir := filepath.Dir(rel); dir != "." {
			loc.Category = firstSegment(dir)
		}
		return fn(path, loc)
	})
	if err != nil {
		return err
	}

	// <root>/domains/<domain>/<kind>/*.md
	domainsDir := filepath.Join(src.Root, domainsSubdir)
	if domains, err := os.ReadDir(domainsDir); err == nil {
		for _, domain := range domains {
			if !domain.IsDir() {
				continue
			}
			dir := filepath.Join(domainsDir, domain.Name(), kind)
			err := walkMarkdown(dir, func(path, _ string) error {
				return fn(path, Location{Plugin: src.Plugin, Domain: domain.Name()})
			})
			if err != nil {
				return err
			}
		}
	}

	// <root>/stacks/<layer>/<framework>/<kind>/[<category>/]*.md
	stacksDir := filepath.Join(src.Root, stacksSubdir)
	layers, err := os.ReadDir(stacksDir)
	if err != nil {
		return nil
	}
	for _, layer := range layers {
		if !layer.IsDir() {
			continue
		}
		frameworks, err := os.ReadDir(filepath.Join(stacksDir, layer.Name()))
		if err != nil {
			continue
		}
		for _, framework := range frameworks {
			if !framework.IsDir() {
				continue
			}
			dir := filepath.Join(stacksDir, layer.Name(), framework.Name(), kind)
			err := walkMarkdown(dir, func(path, rel string) error {
				loc := Location{
					Plugin: src.Plugin,
					Layer:  layer.Name(),
					Stack:  framework.Name(),
				}
				if d := filepath.Dir(rel); d != "." {
					loc.Category = firstSegment(d)
				}
				return fn(path, loc)
			})
			if err != nil {
				return err
			}
		}
	}

	return nil
}

// walkMarkdown visits every .md file under dir, passing the absolute path
// and the slash-separated path relative to dir. A missing dir is not an
// error.
func walkMarkdown(dir string, fn func(path, rel string) error) error {
	return filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return nil
		}
		return fn(path, filepath.ToSlash(rel))
	})
}

// docName derives the document's catalog name from its path: the prefixed
// file stem.
func docName(src Source, path string) string {
	name := strings.TrimSuffix(filepath.Base(path), ".md")
	return src.Prefix + name
}

func firstSegment(slashPath string) string {
	return strings.SplitN(filepath.ToSlash(slashPath), "/", 2)[0]
}

// PluginNameToID converts the on-disk "org@repo" plugin directory name to
// the "org/repo" identifier used in document names.
func PluginNameToID(name string) string {
	return strings.Replace(name, "@", "/", 1)
}

// RepoToPluginName converts a GitHub "owner/repo" path to the on-disk
// plugin directory name. Only the first slash is replaced.
func RepoToPluginName(repo string) string {
	if !strings.Contains(repo, "/") {
		return repo
	}
	return strings.Replace(repo, "/", "@", 1)
}
