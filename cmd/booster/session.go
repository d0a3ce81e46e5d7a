package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	booster "github.com/goliatone/go-booster"
	"github.com/goliatone/go-booster/internal/config"
	"github.com/goliatone/go-booster/pkg/activity"
	"github.com/goliatone/go-booster/pkg/state"
	"github.com/goliatone/go-booster/pkg/state/badgerstore"
	"github.com/goliatone/go-booster/pkg/state/sqlstore"
)

const (
	badgerDir  = "badger"
	sqliteFile = "booster.db"
)

// session is one open store plus the backend resources behind it.
type session struct {
	store  *booster.Store
	closer io.Closer
}

func openBackend(cfg config.StorageConfig, logger *zap.Logger) (state.Backend, io.Closer, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return state.NewMemoryBackend(), nil, nil
	case config.BackendFile:
		return state.NewFileBackend(cfg.Path), nil, nil
	case config.BackendBadger:
		backend, err := badgerstore.Open(badgerstore.Config{
			Path:       filepath.Join(cfg.Path, badgerDir),
			SyncWrites: true,
			Logger:     logger,
		})
		if err != nil {
			return nil, nil, err
		}
		return backend, backend, nil
	case config.BackendSqlite:
		if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create %s: %w", cfg.Path, err)
		}
		backend, err := sqlstore.Open(sqlstore.WithSqlite(filepath.Join(cfg.Path, sqliteFile)))
		if err != nil {
			return nil, nil, err
		}
		return backend, backend, nil
	}
	return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
}

func (a *app) persister(backend state.Backend) *booster.Persister {
	return booster.NewBlobPersister(backend,
		booster.WithStorageKey(a.cfg.Storage.Key),
		booster.WithPersistenceLogger(booster.NewZapLogger(a.logger)),
	)
}

func (a *app) open(ctx context.Context) (*session, error) {
	backend, closer, err := openBackend(a.cfg.Storage, a.logger)
	if err != nil {
		return nil, err
	}

	opts := []booster.StoreOption{
		booster.WithDebounce(a.cfg.DebounceOrDefault()),
		booster.WithLogger(booster.NewZapLogger(a.logger)),
	}
	if a.verbose {
		opts = append(opts, booster.WithActivityHooks(activity.Hooks{activityLogHook(a.logger)}, activity.Config{Channel: "cli"}))
	}

	store := booster.NewStore(a.persister(backend), opts...)
	if err := store.Init(ctx); err != nil {
		if closer != nil {
			closer.Close()
		}
		return nil, err
	}
	return &session{store: store, closer: closer}, nil
}

// Close flushes the pending write and releases the backend.
func (s *session) Close(ctx context.Context) error {
	err := s.store.Teardown(ctx)
	if s.closer != nil {
		err = errors.Join(err, s.closer.Close())
	}
	return err
}

// withStore opens a session, runs fn and always closes the session.
func (a *app) withStore(ctx context.Context, fn func(*booster.Store) error) (err error) {
	sess, err := a.open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, sess.Close(ctx))
	}()
	return fn(sess.store)
}

// current returns the state held by an initialized store.
func current(store *booster.Store) (booster.BoosterState, error) {
	s, ok := store.State()
	if !ok {
		return booster.BoosterState{}, booster.ErrStoreNotInitialized
	}
	return s, nil
}

func activityLogHook(logger *zap.Logger) activity.ActivityHook {
	return activity.HookFunc(func(_ context.Context, event activity.Event) error {
		logger.Debug("worksheet activity",
			zap.String("verb", event.Verb),
			zap.String("object_type", event.ObjectType),
			zap.String("object_id", event.ObjectID),
			zap.String("section", event.Section),
			zap.Strings("fields", event.Fields),
		)
		return nil
	})
}
