// Package catalog provides the shared plugin-layout discovery used by the
// skills and agents packages. A catalog root (repo-local ./.skillet or
// user-global ~/.skillet) holds standalone skills/ and agents/ directories
// plus a plugins/ directory of installed plugin packages. Inside a plugin,
// documents are grouped either by business domain
// (domains/<domain>/{skills,agents}/<file>.md) or by technology stack
// (stacks/<layer>/<framework>/{skills,agents}/<category>/<file>.md).
// The directory path is the only structural relationship between documents.
package catalog

// Document kinds.
const (
	KindSkill = "skills"
	KindAgent = "agents"
)

// Layout constants.
const (
	SkilletDir    = ".skillet"
	pluginsSubdir = "plugins"
	domainsSubdir = "domains"
	stacksSubdir  = "stacks"
)

// Source is one place documents can come from, in precedence order:
// repo-local standalone, repo-local plugins, user-global standalone,
// user-global plugins.
type Source struct {
	Root   string // directory containing skills/, agents/, domains/, stacks/
	Plugin string // plugin name ("org/repo") or "" for standalone sources
	Prefix string // prefix for document names, "org/repo/" or ""
}

// Location captures where in the catalog layout a document was found.
// Zero fields mean the corresponding path segment is absent.
type Location struct {
	Plugin   string // owning plugin, "" for standalone documents
	Domain   string // business domain (hr-management, insurance, ...)
	Layer    string // stack layer (backend, frontend, infra, ...)
	Stack    string // framework/technology (laravel, react-native, ...)
	Category string // coarse grouping (architecture, performance, ...)
}

// InstalledPlugin describes one installed plugin package.
type InstalledPlugin struct {
	Name   string   // on-disk name, "org@repo"
	Path   string   // full path to the plugin directory
	Skills []string // skill document names found in the plugin
	Agents []string // agent document names found in the plugin
}
