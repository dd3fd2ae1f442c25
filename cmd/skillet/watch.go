package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/skillet-ai/skillet/pkg/lint"
	"github.com/skillet-ai/skillet/pkg/logger"
	"github.com/skillet-ai/skillet/pkg/presenter"
)

// fileEvent is a debounced file system event.
type fileEvent struct {
	Path string
	Op   fsnotify.Op
	Time time.Time
}

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Watch a catalog and re-lint on changes",
	Long: `Continuously monitor a catalog directory and re-lint documents as they
change. With --reindex, the search index is rebuilt after each change.

Defaults to watching ./.skillet when no path is given.

Examples:
  skillet watch                             # Watch the repo-local catalog
  skillet watch ./docs/catalog --debounce 1000
  skillet watch --reindex                   # Keep the index fresh
`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := "./.skillet"
		if len(args) > 0 {
			root = args[0]
		}
		if _, err := os.Stat(root); err != nil {
			return errors.Wrapf(err, "cannot watch %s", root)
		}

		debounceMs, _ := cmd.Flags().GetInt("debounce")
		reindex, _ := cmd.Flags().GetBool("reindex")

		ctx := cmd.Context()

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return errors.Wrap(err, "failed to create file watcher")
		}
		defer watcher.Close()

		events := make(chan fileEvent)
		debouncedEvents := make(chan fileEvent)
		go debounceFileEvents(ctx, events, debouncedEvents, time.Duration(debounceMs)*time.Millisecond)

		go func() {
			for {
				select {
				case event, ok := <-debouncedEvents:
					if !ok {
						return
					}
					presenter.Info(fmt.Sprintf("Change detected: %s (%s)", event.Path, event.Op))
					handleCatalogChange(ctx, root, reindex)
				case <-ctx.Done():
					return
				}
			}
		}()

		go func() {
			for {
				select {
				case event, ok := <-watcher.Events:
					if !ok {
						return
					}
					if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
						continue
					}
					// New directories need to be watched too
					if event.Op&fsnotify.Create != 0 {
						if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
							if err := watcher.Add(event.Name); err != nil {
								logger.G(ctx).WithError(err).WithField("directory", event.Name).Warn("Failed to watch new directory")
							}
							continue
						}
					}
					if !strings.HasSuffix(event.Name, ".md") {
						continue
					}
					events <- fileEvent{Path: event.Name, Op: event.Op, Time: time.Now()}
				case err, ok := <-watcher.Errors:
					if !ok {
						return
					}
					presenter.Error(err, "File watcher error")
					logger.G(ctx).WithError(err).Error("Error watching files")
				case <-ctx.Done():
					return
				}
			}
		}()

		err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				logger.G(ctx).WithField("directory", path).Debug("Adding directory to watcher")
				return watcher.Add(path)
			}
			return nil
		})
		if err != nil {
			return errors.Wrap(err, "failed to watch directories")
		}

		presenter.Info(fmt.Sprintf("Watching %s for changes... Press Ctrl+C to stop", root))
		<-ctx.Done()
		return nil
	},
}

func handleCatalogChange(ctx context.Context, root string, reindex bool) {
	result, err := lint.NewRunner().Run(root)
	if err != nil {
		presenter.Error(err, "Lint failed")
		return
	}

	for _, issue := range result.Issues {
		line := issue.Path
		if issue.Line > 0 {
			line = fmt.Sprintf("%s:%d", issue.Path, issue.Line)
		}
		if issue.Severity == lint.SeverityWarning {
			presenter.Warning(fmt.Sprintf("%s [%s] %s", line, issue.Rule, issue.Message))
		} else {
			presenter.Error(errors.New(issue.Message), fmt.Sprintf("%s [%s]", line, issue.Rule))
		}
	}

	if result.HasErrors() {
		presenter.Warning("Catalog has lint errors, index not rebuilt")
		return
	}

	presenter.Success(fmt.Sprintf("%d documents checked", result.Checked))
	if reindex {
		if err := rebuildIndex(ctx, ""); err != nil {
			presenter.Error(err, "Failed to rebuild index")
		}
	}
}

// debounceFileEvents collapses rapid changes to the same file into one event.
func debounceFileEvents(ctx context.Context, input <-chan fileEvent, output chan<- fileEvent, delay time.Duration) {
	pending := make(map[string]*time.Timer)

	for {
		select {
		case event, ok := <-input:
			if !ok {
				for _, timer := range pending {
					timer.Stop()
				}
				return
			}
			if timer, exists := pending[event.Path]; exists {
				timer.Stop()
				delete(pending, event.Path)
			}

			eventCopy := event
			pending[event.Path] = time.AfterFunc(delay, func() {
				select {
				case output <- eventCopy:
				case <-ctx.Done():
				}
			})
		case <-ctx.Done():
			for _, timer := range pending {
				timer.Stop()
			}
			return
		}
	}
}

func init() {
	watchCmd.Flags().Int("debounce", 500, "Debounce time in milliseconds for file change events")
	watchCmd.Flags().Bool("reindex", false, "Rebuild the search index after changes")
}
