// Package skills discovers and loads skill documents: focused how-to
// references for one technical concern within one named stack. A skill is
// a markdown file with an optional front matter header (name, description,
// applies_to, category) followed by freeform prose and code examples.
package skills

// Skill is a discovered skill document.
type Skill struct {
	Name        string // unique catalog name, plugin-prefixed for plugin skills
	Description string // one-line summary from the header
	AppliesTo   string // technology stack the content targets
	Category    string // coarse grouping (architecture, performance, testing, ...)
	Plugin      string // owning plugin, "" for standalone skills
	Domain      string // business domain, when grouped by domain
	Layer       string // stack layer, when grouped by stack
	Path        string // full path to the markdown file
	Content     string // document body without the header
}
