package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	booster "github.com/goliatone/go-booster"
	"github.com/goliatone/go-booster/internal/config"
	"github.com/goliatone/go-booster/pkg/debounce"
	"github.com/goliatone/go-booster/pkg/state"
	"github.com/goliatone/go-booster/report"
)

const watchSettle = 200 * time.Millisecond

func newWatchCommand(a *app) *cobra.Command {
	var section string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-print the report whenever the stored snapshot changes",
		Long: `watch follows the snapshot file of the file backend and prints the
status (or one section with --section) every time another booster process
saves. Stop it with Ctrl-C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Storage.Backend != config.BackendFile {
				return fmt.Errorf("watch needs the file backend, configured %q", a.cfg.Storage.Backend)
			}
			render := func(s booster.BoosterState) (string, error) {
				if section == "" {
					return report.Status(s, report.Options{})
				}
				parsed, ok := booster.ParseSection(section)
				if !ok {
					return "", fmt.Errorf("unknown section %q", section)
				}
				return report.Section(parsed, s, report.Options{})
			}
			return a.watch(cmd.Context(), cmd.OutOrStdout(), render)
		},
	}
	cmd.Flags().StringVar(&section, "section", "", "Section to print instead of the status")
	return cmd
}

func (a *app) watch(ctx context.Context, out io.Writer, render func(booster.BoosterState) (string, error)) error {
	backend := state.NewFileBackend(a.cfg.Storage.Path)
	persister := a.persister(backend)
	target := filepath.Clean(backend.Path(a.cfg.Storage.Key))

	show := func(struct{}) {
		s, ok := persister.Load(ctx)
		if !ok {
			s = booster.DefaultState()
		}
		text, err := render(s)
		if err != nil {
			a.logger.Warn("watch render failed", zap.Error(err))
			return
		}
		fmt.Fprintf(out, "--- %s\n%s", time.Now().Format(time.TimeOnly), text)
	}
	show(struct{}{})

	if err := os.MkdirAll(a.cfg.Storage.Path, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", a.cfg.Storage.Path, err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(a.cfg.Storage.Path); err != nil {
		return fmt.Errorf("watch %s: %w", a.cfg.Storage.Path, err)
	}

	// Saves land as temp-file writes followed by a rename; one render per burst.
	refresh := debounce.New(watchSettle, show)
	defer refresh.Stop()

	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				a.logger.Debug("snapshot changed", zap.String("path", event.Name), zap.String("op", event.Op.String()))
				refresh.Call(struct{}{})
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.logger.Warn("watcher error", zap.Error(err))
		}
	}
}
