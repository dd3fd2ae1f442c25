// Package frontmatter parses the optional YAML metadata block at the top
// of catalog documents. The header convention is deliberately loose: the
// block may be absent, keys are optional and order-insensitive, and
// unknown keys are preserved rather than rejected. Typed accessors on
// Meta do the tolerant coercion each caller needs.
package frontmatter

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"
)

// Meta is the parsed front matter of a document. Keys the data model does
// not know about are kept as-is.
type Meta map[string]any

// Parse splits a document into front matter and body. A document without a
// leading metadata block yields an empty Meta and the full content as body.
// Malformed YAML inside the block is an error.
func Parse(content []byte) (Meta, string, error) {
	md := goldmark.New(
		goldmark.WithExtensions(meta.Meta),
	)

	var buf bytes.Buffer
	pctx := parser.NewContext()

	if err := md.Convert(content, &buf, parser.WithContext(pctx)); err != nil {
		return nil, "", errors.Wrap(err, "failed to parse markdown")
	}

	metaData, err := meta.TryGet(pctx)
	if err != nil {
		return nil, "", errors.Wrap(err, "invalid frontmatter")
	}

	body := ExtractBody(string(content))
	if metaData == nil {
		return Meta{}, body, nil
	}
	return Meta(metaData), body, nil
}

// Has reports whether the key is present in the front matter.
func (m Meta) Has(key string) bool {
	_, ok := m[key]
	return ok
}

// String returns the value for key as a string, or "" when absent or not
// a string.
func (m Meta) String(key string) string {
	s, _ := m[key].(string)
	return s
}

// Int returns the value for key as an int, or 0 when absent or not numeric.
func (m Meta) Int(key string) int {
	switch v := m[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// StringList returns the value for key as a list of trimmed strings.
// Accepts both YAML lists and comma-separated scalar strings; non-string
// list items are dropped.
func (m Meta) StringList(key string) []string {
	switch v := m[key].(type) {
	case []any:
		var result []string
		for _, item := range v {
			if s, ok := item.(string); ok {
				if trimmed := strings.TrimSpace(s); trimmed != "" {
					result = append(result, trimmed)
				}
			}
		}
		return result
	case string:
		var result []string
		for _, item := range strings.Split(v, ",") {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	default:
		return nil
	}
}

// ExtractBody strips the leading metadata block, returning the remainder
// of the document. Content without a block is returned unchanged.
func ExtractBody(content string) string {
	if !strings.HasPrefix(content, "---") {
		return content
	}

	lines := strings.Split(content, "\n")
	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			end = i
			break
		}
	}
	if end == -1 {
		return content
	}

	return strings.TrimLeft(strings.Join(lines[end+1:], "\n"), "\n")
}

// CheckUTF8 verifies that content is well-formed UTF-8.
func CheckUTF8(content []byte) error {
	if !utf8.Valid(content) {
		return errors.New("content is not valid UTF-8")
	}
	return nil
}

// UnterminatedFence scans the document for an unclosed code fence.
// It returns the 1-based line number of the dangling opener and true when
// one is found.
func UnterminatedFence(content string) (int, bool) {
	var (
		inFence   bool
		openLine  int
		fenceChar byte
		fenceLen  int
	)

	for i, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimLeft(line, " \t")
		marker, length := fenceMarker(trimmed)
		if marker == 0 {
			continue
		}

		if !inFence {
			inFence = true
			openLine = i + 1
			fenceChar = marker
			fenceLen = length
			continue
		}

		// A closing fence uses the same marker, at least as long, with
		// nothing but the marker on the line.
		if marker == fenceChar && length >= fenceLen && strings.TrimRight(trimmed, string(marker)) == "" {
			inFence = false
		}
	}

	if inFence {
		return openLine, true
	}
	return 0, false
}

// fenceMarker returns the fence character and run length when the line
// starts a code fence, or (0, 0) otherwise.
func fenceMarker(line string) (byte, int) {
	if len(line) < 3 {
		return 0, 0
	}
	c := line[0]
	if c != '`' && c != '~' {
		return 0, 0
	}
	n := 0
	for n < len(line) && line[n] == c {
		n++
	}
	if n < 3 {
		return 0, 0
	}
	return c, n
}
