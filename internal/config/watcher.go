package config

import (
	"context"
	"fmt"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// WatchChanges watches the config file with fsnotify and signals writes
// on eventChan. Runs until the context is cancelled.
func WatchChanges(ctx context.Context, log *zerolog.Logger, path string, eventChan chan<- struct{}) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() {
		_ = watcher.Close()
	}()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("failed to add watch on path %s: %w", path, err)
	}

	log.Debug().Str("path", path).Msg("Started watching config file for changes")

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Write == fsnotify.Write {
				log.Debug().Str("file", event.Name).Msg("Config file modified")
				select {
				case eventChan <- struct{}{}:
				default:
					log.Warn().Msg("Config change channel full; skipping event")
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error().Err(err).Msg("Config watcher encountered an error")
		}
	}
}
