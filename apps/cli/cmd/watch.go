package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/abdul-hamid-achik/hookshot/packages/core/config"
	"github.com/abdul-hamid-achik/hookshot/packages/core/fixture"
	"github.com/abdul-hamid-achik/hookshot/packages/core/pipeline"
	"github.com/abdul-hamid-achik/hookshot/packages/output"
	"github.com/fsnotify/fsnotify"
)

const (
	// WatchDebounceDelay is the debounce delay for file watch events
	WatchDebounceDelay = 300 * time.Millisecond
)

// watch runs req once and again whenever its fixture or header sidecar
// changes. Runs never overlap. Failed runs are reported and watching goes on.
func watch(ctx context.Context, cfg *config.Config, p *pipeline.Pipeline, req pipeline.Request, console *output.Console) error {
	fixturePath := fixture.ResolvePath(cfg.FixturesDirFor(req.Integration), req.Fixture)
	watched := map[string]bool{
		filepath.Clean(fixturePath):                      true,
		filepath.Clean(fixture.SidecarPath(fixturePath)): true,
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often replace files instead of writing them, so the directory
	// is watched rather than the file.
	dir := filepath.Dir(fixturePath)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	runOnce := func() {
		if _, err := p.Run(ctx, req); err != nil && ctx.Err() == nil {
			console.Error(err)
		}
		console.Info("\nWatching %s for changes... (press Ctrl+C to stop)", fixturePath)
	}

	runOnce()

	// Debounce timer for rapid file changes
	debounce := time.NewTimer(WatchDebounceDelay)
	debounce.Stop()
	var changed string

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !watched[filepath.Clean(event.Name)] {
				continue
			}
			changed = event.Name
			debounce.Reset(WatchDebounceDelay)

		case <-debounce.C:
			console.Info("\nFile changed: %s\nRe-running...\n", changed)
			runOnce()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			console.Error(fmt.Errorf("watcher error: %w", err))
		}
	}
}
