// Package render executes agent prompt templates. Templates are standard
// text/template documents with a bash helper for inlining command output.
package render

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"text/template"
	"time"

	"github.com/pkg/errors"

	"github.com/skillet-ai/skillet/pkg/logger"
)

const bashTimeout = 30 * time.Second

// Renderer renders template bodies with argument substitution.
type Renderer struct {
	allowBash bool
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithBashDisabled replaces the bash helper with one that rejects execution.
// Used when rendering untrusted catalog content.
func WithBashDisabled() Option {
	return func(r *Renderer) {
		r.allowBash = false
	}
}

// NewRenderer creates a renderer. Bash execution is enabled by default.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{allowBash: true}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render parses and executes the template body with the given arguments.
// Arguments are exposed as the template's dot value, so {{.env}} reads the
// "env" argument.
func (r *Renderer) Render(ctx context.Context, body string, args map[string]string) (string, error) {
	tmpl, err := template.New("prompt").Funcs(template.FuncMap{
		"bash": r.bashFunc(ctx),
	}).Parse(body)
	if err != nil {
		return "", errors.Wrap(err, "failed to parse template")
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, args); err != nil {
		return "", errors.Wrap(err, "failed to execute template")
	}

	return buf.String(), nil
}

func (r *Renderer) bashFunc(ctx context.Context) func(...string) string {
	return func(args ...string) string {
		if !r.allowBash {
			return "[ERROR: bash execution is disabled]"
		}
		if len(args) == 0 {
			return "[ERROR: bash function requires at least one argument]"
		}

		command := args[0]
		cmdArgs := args[1:]

		logger.G(ctx).WithFields(map[string]interface{}{
			"command": command,
			"args":    cmdArgs,
		}).Debug("Executing bash command")

		cmdCtx, cancel := context.WithTimeout(ctx, bashTimeout)
		defer cancel()

		cmd := exec.CommandContext(cmdCtx, command, cmdArgs...)
		output, err := cmd.CombinedOutput()
		if err != nil {
			fullCmd := append([]string{command}, cmdArgs...)
			logger.G(ctx).WithFields(map[string]interface{}{
				"command": command,
				"args":    cmdArgs,
			}).WithError(err).Warn("Bash command failed")
			return fmt.Sprintf("[ERROR executing command '%s': %v]", strings.Join(fullCmd, " "), err)
		}

		return strings.TrimRight(string(output), "\n\r")
	}
}

// ParseArguments parses key=value pairs from the command line.
func ParseArguments(pairs []string) (map[string]string, error) {
	args := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, errors.Errorf("invalid argument %q (expected key=value)", pair)
		}
		args[key] = value
	}
	return args, nil
}
