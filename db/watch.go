package db

import (
	"context"
	"fmt"
	"os"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/padraicbc/cc6api/models"
)

// WatchClubs calls apply with the club list in path each time the file is
// written, until ctx is cancelled. A file that fails to parse is logged and
// skipped.
func WatchClubs(ctx context.Context, path string, apply func(context.Context, []models.Club) error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	zap.L().Info("watching clubs file", zap.String("path", path))

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Editors that save by rename show up as Create.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			reloadClubs(ctx, path, apply)
			_ = watcher.Add(path)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			zap.L().Error("clubs watcher", zap.Error(err))
		}
	}
}

func reloadClubs(ctx context.Context, path string, apply func(context.Context, []models.Club) error) {
	data, err := os.ReadFile(path)
	if err != nil {
		zap.L().Error("read clubs file", zap.String("path", path), zap.Error(err))
		return
	}
	clubs, err := LoadClubs(data)
	if err != nil {
		zap.L().Error("clubs file rejected", zap.String("path", path), zap.Error(err))
		return
	}
	if err := apply(ctx, clubs); err != nil {
		zap.L().Error("apply clubs", zap.Error(err))
		return
	}
	zap.L().Info("clubs reloaded", zap.String("path", path), zap.Int("count", len(clubs)))
}
