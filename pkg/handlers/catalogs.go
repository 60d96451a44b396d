package handlers

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"cheatsheets/pkg/catalog"
	"cheatsheets/pkg/storage"
)

// Catalogs hands out one catalog engine per user, all sharing one store.
// Each engine refuses plain deletion of a category its records still use.
type Catalogs struct {
	store   *storage.Store
	logger  zerolog.Logger
	mutex   sync.Mutex
	engines map[string]*catalog.Engine
}

func NewCatalogs(store *storage.Store, logger zerolog.Logger) *Catalogs {
	return &Catalogs{
		store:   store,
		logger:  logger,
		engines: make(map[string]*catalog.Engine),
	}
}

// For returns the engine of userID, loading it from the store on first use
func (c *Catalogs) For(userID string) *catalog.Engine {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if e, ok := c.engines[userID]; ok {
		return e
	}
	logger := c.logger.With().Str("user", userID).Logger()
	p := catalog.NewLocalPersistence(c.store,
		catalog.WithKeyPrefix("u-"+userID),
		catalog.WithInUseRefusal(),
	)
	e := catalog.New(p, catalog.WithLogger(logger))
	if err := e.Load(context.Background()); err != nil {
		logger.Warn().Err(err).Msg("Loading catalog failed")
	}
	c.engines[userID] = e
	return e
}
