package catalog

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/avast/retry-go/v4"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/skillet-ai/skillet/pkg/logger"
)

// ValidateRepoName validates a GitHub repository name in "owner/repo" form.
func ValidateRepoName(repo string) error {
	if repo == "" {
		return errors.New("repository name cannot be empty")
	}
	if !strings.Contains(repo, "/") {
		return errors.Errorf("invalid repository format %q: expected 'owner/repo'", repo)
	}
	parts := strings.SplitN(repo, "/", 2)
	if parts[0] == "" || parts[1] == "" {
		return errors.Errorf("invalid repository format %q: owner and repo cannot be empty", repo)
	}
	return nil
}

// Installer installs plugin catalogs from GitHub repositories.
type Installer struct {
	global    bool
	force     bool
	subdir    string
	targetDir string
}

// InstallerOption configures an Installer.
type InstallerOption func(*Installer)

// WithGlobal installs into ~/.skillet instead of ./.skillet.
func WithGlobal(global bool) InstallerOption {
	return func(i *Installer) { i.global = global }
}

// WithForce overwrites an already installed plugin.
func WithForce(force bool) InstallerOption {
	return func(i *Installer) { i.force = force }
}

// WithSubdir installs only the given subdirectory of the repository.
func WithSubdir(dir string) InstallerOption {
	return func(i *Installer) { i.subdir = dir }
}

// NewInstaller creates a plugin installer.
func NewInstaller(opts ...InstallerOption) (*Installer, error) {
	i := &Installer{}
	for _, opt := range opts {
		opt(i)
	}

	if i.global {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(err, "failed to get home directory")
		}
		i.targetDir = filepath.Join(homeDir, SkilletDir)
	} else {
		i.targetDir = SkilletDir
	}

	return i, nil
}

// InstallResult describes what an installation produced.
type InstallResult struct {
	PluginName string
	Skills     []string
	Agents     []string
}

// Install clones the repository (optionally at a ref) and copies its
// catalog content into the plugins directory under the "org@repo" name.
// The repository must contain at least one skill or agent document in one
// of the layout shapes.
func (i *Installer) Install(ctx context.Context, repo, ref string) (*InstallResult, error) {
	if err := ValidateRepoName(repo); err != nil {
		return nil, err
	}

	tempDir, err := i.cloneRepo(ctx, repo, ref)
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tempDir)

	srcDir := tempDir
	if i.subdir != "" {
		srcDir = filepath.Join(tempDir, i.subdir)
		if _, err := os.Stat(srcDir); err != nil {
			return nil, errors.Wrapf(err, "subdirectory %q not found in repository", i.subdir)
		}
	}

	pluginName := RepoToPluginName(repo)
	pluginDir := filepath.Join(i.targetDir, pluginsSubdir, pluginName)
	if err := i.checkExisting(pluginDir); err != nil {
		return nil, err
	}

	result := &InstallResult{PluginName: pluginName}

	src := Source{Root: srcDir}
	err = WalkDocuments(src, KindSkill, func(path string, _ Location) error {
		result.Skills = append(result.Skills, docName(src, path))
		return i.installDocument(srcDir, pluginDir, path)
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to install skills")
	}

	err = WalkDocuments(src, KindAgent, func(path string, _ Location) error {
		result.Agents = append(result.Agents, docName(src, path))
		return i.installDocument(srcDir, pluginDir, path)
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to install agents")
	}

	if len(result.Skills) == 0 && len(result.Agents) == 0 {
		os.RemoveAll(pluginDir)
		return nil, errors.New("no documents found in repository (expected skills/, agents/, domains/, or stacks/ layouts)")
	}

	return result, nil
}

// cloneRepo performs a shallow clone via the gh CLI, falling back to plain
// git when gh is unavailable. The clone is retried to ride out transient
// network failures.
func (i *Installer) cloneRepo(ctx context.Context, repo, ref string) (string, error) {
	tempDir, err := os.MkdirTemp("", "skillet-plugin-*")
	if err != nil {
		return "", errors.Wrap(err, "failed to create temp directory")
	}

	clone := func() error {
		var cmd *exec.Cmd
		if _, err := exec.LookPath("gh"); err == nil {
			args := []string{"repo", "clone", repo, tempDir, "--", "--depth", "1"}
			if ref != "" {
				args = append(args, "--branch", ref)
			}
			cmd = exec.CommandContext(ctx, "gh", args...)
		} else {
			args := []string{"clone", "--depth", "1"}
			if ref != "" {
				args = append(args, "--branch", ref)
			}
			args = append(args, "https://github.com/"+repo+".git", tempDir)
			cmd = exec.CommandContext(ctx, "git", args...)
		}

		if output, err := cmd.CombinedOutput(); err != nil {
			os.RemoveAll(tempDir)
			if mkErr := os.MkdirAll(tempDir, 0o755); mkErr != nil {
				return retry.Unrecoverable(mkErr)
			}
			return errors.Wrapf(err, "failed to clone repository: %s", string(output))
		}
		return nil
	}

	err = retry.Do(clone,
		retry.Context(ctx),
		retry.Attempts(3),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logger.G(ctx).WithField("attempt", n+1).WithError(err).Warn("Clone failed, retrying")
		}),
	)
	if err != nil {
		os.RemoveAll(tempDir)
		return "", err
	}

	return tempDir, nil
}

// installDocument copies one document, preserving its path relative to the
// source root so the layout shape survives installation.
func (i *Installer) installDocument(srcRoot, pluginDir, path string) error {
	rel, err := filepath.Rel(srcRoot, path)
	if err != nil {
		return err
	}
	return copyFile(path, filepath.Join(pluginDir, rel))
}

func (i *Installer) checkExisting(path string) error {
	if _, err := os.Stat(path); err == nil {
		if !i.force {
			return errors.Errorf("plugin already exists at %s (use --force to overwrite)", path)
		}
		if err := os.RemoveAll(path); err != nil {
			return errors.Wrap(err, "failed to remove existing plugin")
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return err
	}

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, srcInfo.Mode())
	if err != nil {
		return err
	}
	defer dstFile.Close()

	_, err = io.Copy(dstFile, srcFile)
	return err
}

// Remover removes installed plugins.
type Remover struct {
	baseDir string
}

// NewRemover creates a plugin remover.
func NewRemover(opts ...InstallerOption) (*Remover, error) {
	i := &Installer{}
	for _, opt := range opts {
		opt(i)
	}

	r := &Remover{baseDir: SkilletDir}
	if i.global {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(err, "failed to get home directory")
		}
		r.baseDir = filepath.Join(homeDir, SkilletDir)
	}

	return r, nil
}

// Remove deletes a plugin by name. Accepts both "org/repo" and the
// on-disk "org@repo" form.
func (r *Remover) Remove(name string) error {
	pluginName := name
	if strings.Contains(name, "/") {
		pluginName = RepoToPluginName(name)
	}

	pluginDir := filepath.Join(r.baseDir, pluginsSubdir, pluginName)
	if _, err := os.Stat(pluginDir); err != nil {
		if os.IsNotExist(err) {
			return errors.Errorf("plugin '%s' is not installed", name)
		}
		return errors.Wrap(err, "failed to stat plugin directory")
	}

	return errors.Wrap(os.RemoveAll(pluginDir), "failed to remove plugin")
}

// RemoveAll removes every named plugin, continuing past failures and
// aggregating the errors.
func (r *Remover) RemoveAll(names []string) error {
	var result *multierror.Error
	for _, name := range names {
		if err := r.Remove(name); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
