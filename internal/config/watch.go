package config

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// settingsDebounce coalesces bursts of file events into one reload.
var settingsDebounce = 200 * time.Millisecond

// WatchSettings monitors the settings file and swaps the store's snapshot on
// every successful reload. It runs until ctx is cancelled.
//
// A reload that fails to read, parse or validate is logged and the previous
// snapshot stays active.
func WatchSettings(
	ctx context.Context,
	path string,
	store *SettingsStore,
	logger *zap.SugaredLogger,
) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create settings watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("failed to watch settings file: %w", err)
	}

	logger.Infow("watching settings file", "path", path)

	var debounce *time.Timer
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Editors often save via rename, which surfaces as Create.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			if debounce == nil {
				debounce = time.NewTimer(settingsDebounce)
				pending = debounce.C
			} else {
				if !debounce.Stop() {
					select {
					case <-debounce.C:
					default:
					}
				}
				debounce.Reset(settingsDebounce)
			}

			// An atomic save replaces the inode; re-add to keep watching.
			_ = watcher.Add(path)

		case <-pending:
			debounce = nil
			pending = nil

			settings, loadErr := LoadSettings(path)
			if loadErr != nil {
				logger.Warnw("settings reload failed, keeping previous snapshot",
					"path", path,
					"error", loadErr,
				)
				continue
			}

			store.Replace(settings)
			logger.Infow("settings reloaded", "path", path)

		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warnw("settings watcher error", "error", watchErr)
		}
	}
}
