// Package lint implements the structural checks a catalog of markdown
// documents can be held to: headers parse, trigger lists are well-formed,
// applies_to agrees with the stack directory, files are clean UTF-8 with
// balanced code fences, and no two documents in a directory claim the
// same name. These are documentation-linting checks; the documents have
// no behavior to verify beyond their structure.
package lint

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/go-multierror"

	"github.com/skillet-ai/skillet/pkg/frontmatter"
)

// Severity of a lint issue.
type Severity string

// Severities.
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Rule identifiers.
const (
	RuleHeaderSyntax   = "header-syntax"
	RuleAgentTriggers  = "agent-triggers"
	RuleAppliesToStack = "applies-to-stack"
	RuleEncodingFences = "encoding-fences"
	RuleDuplicateNames = "duplicate-names"
)

// Issue is one lint finding.
type Issue struct {
	Rule     string   `json:"rule"`
	Severity Severity `json:"severity"`
	Path     string   `json:"path"`
	Line     int      `json:"line,omitempty"`
	Message  string   `json:"message"`
}

// Result is the outcome of a lint run.
type Result struct {
	Issues  []Issue `json:"issues"`
	Checked int     `json:"checked"`
}

// HasErrors reports whether any issue has error severity.
func (r *Result) HasErrors() bool {
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Runner lints a catalog tree.
type Runner struct {
	include []string
	exclude []string
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithInclude sets the include glob patterns (doublestar syntax, relative
// to the lint root). Default is all markdown files.
func WithInclude(patterns ...string) RunnerOption {
	return func(r *Runner) { r.include = patterns }
}

// WithExclude sets exclude glob patterns.
func WithExclude(patterns ...string) RunnerOption {
	return func(r *Runner) { r.exclude = patterns }
}

// NewRunner creates a lint runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{include: []string{"**/*.md"}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run lints every selected file under root. File-level findings become
// issues; I/O failures are aggregated into the returned error.
func (r *Runner) Run(root string) (*Result, error) {
	result := &Result{}
	var runErr *multierror.Error

	// name → first path, keyed per directory for the duplicate check
	declared := make(map[string]map[string]string)

	walkErr := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			runErr = multierror.Append(runErr, err)
			return nil
		}
		if entry.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if !r.selected(rel) {
			return nil
		}

		result.Checked++
		content, err := os.ReadFile(path)
		if err != nil {
			runErr = multierror.Append(runErr, err)
			return nil
		}

		r.checkFile(result, declared, rel, content)
		return nil
	})
	if walkErr != nil {
		runErr = multierror.Append(runErr, walkErr)
	}

	sort.Slice(result.Issues, func(i, j int) bool {
		if result.Issues[i].Path != result.Issues[j].Path {
			return result.Issues[i].Path < result.Issues[j].Path
		}
		return result.Issues[i].Rule < result.Issues[j].Rule
	})

	return result, runErr.ErrorOrNil()
}

func (r *Runner) selected(rel string) bool {
	if !strings.HasSuffix(rel, ".md") {
		return false
	}
	for _, pattern := range r.exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return false
		}
	}
	for _, pattern := range r.include {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// checkFile applies every file-scoped rule and records declared names for
// the directory-scoped duplicate check.
func (r *Runner) checkFile(result *Result, declared map[string]map[string]string, rel string, content []byte) {
	if err := frontmatter.CheckUTF8(content); err != nil {
		result.Issues = append(result.Issues, Issue{
			Rule:     RuleEncodingFences,
			Severity: SeverityError,
			Path:     rel,
			Message:  err.Error(),
		})
		return
	}

	// The fence scan covers the full file so issue lines match the file;
	// header delimiter lines are not fence markers.
	if line, open := frontmatter.UnterminatedFence(string(content)); open {
		result.Issues = append(result.Issues, Issue{
			Rule:     RuleEncodingFences,
			Severity: SeverityError,
			Path:     rel,
			Line:     line,
			Message:  "unterminated code fence",
		})
	}

	meta, _, err := frontmatter.Parse(content)
	if err != nil {
		result.Issues = append(result.Issues, Issue{
			Rule:     RuleHeaderSyntax,
			Severity: SeverityError,
			Path:     rel,
			Message:  err.Error(),
		})
		return
	}

	r.checkTriggers(result, rel, meta)
	r.checkAppliesTo(result, rel, meta)
	r.recordName(result, declared, rel, meta)
}

// checkTriggers verifies that a triggers list, when present, is a
// non-empty list containing only non-blank strings.
func (r *Runner) checkTriggers(result *Result, rel string, meta frontmatter.Meta) {
	raw, present := meta["triggers"]
	if !present {
		return
	}

	list, ok := raw.([]any)
	if !ok {
		// A scalar string is tolerated by loaders; anything else is not.
		if s, isString := raw.(string); !isString || strings.TrimSpace(s) == "" {
			result.Issues = append(result.Issues, Issue{
				Rule:     RuleAgentTriggers,
				Severity: SeverityError,
				Path:     rel,
				Message:  "triggers must be a list of strings",
			})
		}
		return
	}

	if len(list) == 0 {
		result.Issues = append(result.Issues, Issue{
			Rule:     RuleAgentTriggers,
			Severity: SeverityError,
			Path:     rel,
			Message:  "triggers list is empty",
		})
		return
	}

	for _, item := range list {
		s, isString := item.(string)
		if !isString || strings.TrimSpace(s) == "" {
			result.Issues = append(result.Issues, Issue{
				Rule:     RuleAgentTriggers,
				Severity: SeverityError,
				Path:     rel,
				Message:  "triggers list contains a non-string or blank entry",
			})
			return
		}
	}
}

// checkAppliesTo verifies that applies_to agrees with the framework
// directory for documents under stacks/<layer>/<framework>.
func (r *Runner) checkAppliesTo(result *Result, rel string, meta frontmatter.Meta) {
	appliesTo := meta.String("applies_to")
	if appliesTo == "" {
		return
	}

	framework := frameworkSegment(rel)
	if framework == "" || framework == appliesTo {
		return
	}

	result.Issues = append(result.Issues, Issue{
		Rule:     RuleAppliesToStack,
		Severity: SeverityWarning,
		Path:     rel,
		Message:  "applies_to '" + appliesTo + "' does not match stack directory '" + framework + "'",
	})
}

// frameworkSegment extracts <framework> from a path containing
// stacks/<layer>/<framework>/..., or "" when the shape is absent.
func frameworkSegment(rel string) string {
	segments := strings.Split(rel, "/")
	for i, segment := range segments {
		if segment == "stacks" && i+2 < len(segments) {
			return segments[i+2]
		}
	}
	return ""
}

// recordName enforces name uniqueness per directory for documents that
// declare a name.
func (r *Runner) recordName(result *Result, declared map[string]map[string]string, rel string, meta frontmatter.Meta) {
	name := meta.String("name")
	if name == "" {
		return
	}

	dir := filepath.ToSlash(filepath.Dir(rel))
	if declared[dir] == nil {
		declared[dir] = make(map[string]string)
	}

	if first, exists := declared[dir][name]; exists {
		result.Issues = append(result.Issues, Issue{
			Rule:     RuleDuplicateNames,
			Severity: SeverityError,
			Path:     rel,
			Message:  "name '" + name + "' already declared by " + first,
		})
		return
	}
	declared[dir][name] = rel
}
