package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// debounceInterval coalesces the burst of events editors emit on save.
const debounceInterval = 250 * time.Millisecond

// watchAndRun re-invokes run whenever the schema file changes. The watch
// covers the schema's directory because editors replace files on save,
// which would drop a watch on the file itself. Generation errors are logged
// and watching continues; the loop ends with the context.
func watchAndRun(ctx context.Context, log zerolog.Logger, schemaPath string, run func(context.Context) error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(schemaPath)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	target, err := filepath.Abs(schemaPath)
	if err != nil {
		return err
	}
	log.Info().Str("schema", schemaPath).Msg("watching for changes")

	var timer *time.Timer
	fire := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher closed")
			}
			p, err := filepath.Abs(event.Name)
			if err != nil || p != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounceInterval, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
		case <-fire:
			log.Info().Msg("schema changed, regenerating")
			if err := run(ctx); err != nil {
				log.Error().Err(err).Msg("generation failed")
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher closed")
			}
			log.Warn().Err(err).Msg("watcher error")
		}
	}
}
