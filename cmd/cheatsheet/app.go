package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"cheatsheets/pkg/catalog"
	"cheatsheets/pkg/config"
	"cheatsheets/pkg/errors"
	"cheatsheets/pkg/remote"
	"cheatsheets/pkg/session"
	"cheatsheets/pkg/storage"
	"cheatsheets/pkg/utils"
)

// app bundles everything a command may need for one run
type app struct {
	store   *storage.Store
	client  *remote.Client
	vault   *session.Vault
	session *session.Session
	engine  *catalog.Engine
}

// openApp opens the durable store and the remote client. The catalog
// engine is only built when withCatalog is set.
func openApp(ctx context.Context, cfg *config.Config, withCatalog bool) (*app, error) {
	if cfg.Storage == storage.KindFile || cfg.Storage == storage.KindSQLite {
		if err := cfg.EnsureDataDir(); err != nil {
			return nil, errors.ErrStorageUnavailable.WithCause(err)
		}
	}

	backend, err := storage.Open(ctx, storage.BackendSpec{
		Kind:        cfg.Storage,
		DataDir:     cfg.DataDir,
		SQLitePath:  cfg.SQLitePath,
		RedisURL:    cfg.RedisURL,
		RedisPrefix: cfg.RedisPrefix,
	})
	if err != nil {
		return nil, errors.ErrStorageUnavailable.WithCause(err)
	}

	a := &app{store: storage.NewStore(backend, storage.WithLogger(log.Logger))}
	a.vault = session.NewVault(a.store)

	a.client, err = remote.New(cfg.APIURL,
		remote.WithTokenSource(a.vault),
		remote.WithTimeout(cfg.HTTPTimeout),
		remote.WithRetries(cfg.MaxRetries),
		remote.WithLogger(log.Logger),
		remote.WithDebugLogging(cfg.Debug),
	)
	if err != nil {
		a.close()
		return nil, err
	}
	a.session = session.New(a.client, a.vault, session.WithLogger(log.Logger))

	if !withCatalog {
		return a, nil
	}

	switch cfg.Mode {
	case config.ModeRemote:
		if a.vault.Token() == "" {
			a.close()
			return nil, errors.ErrNotAuthenticated
		}
		a.engine = catalog.NewRemote(a.client, catalog.WithLogger(log.Logger))
		if err := a.engine.Load(ctx); err != nil {
			a.close()
			return nil, err
		}
	default:
		a.engine = catalog.NewLocal(a.store, catalog.WithLogger(log.Logger))
	}
	return a, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		log.Warn().Err(err).Msg("Error closing storage")
	}
}

// resolveID turns a full id or a unique id prefix into a record id
func (a *app) resolveID(prefix string) (string, error) {
	records := a.engine.Records()
	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	id, ok := utils.ResolveIDPrefix(ids, prefix)
	if !ok {
		return "", errors.ErrRecordNotFound.
			WithContext("id", prefix).
			WithUserMessage(fmt.Sprintf("No single cheat sheet matches %q", prefix))
	}
	return id, nil
}

// userMessage prefers the friendly message of an AppError
func userMessage(err error) string {
	if appErr, ok := errors.As(err); ok {
		return appErr.GetUserMessage()
	}
	return err.Error()
}
