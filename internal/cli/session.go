package cli

import (
	"context"
	"fmt"

	"github.com/idilsaglam/todolist/internal/config"
	"github.com/idilsaglam/todolist/internal/loader"
	"github.com/idilsaglam/todolist/internal/store"
	"github.com/idilsaglam/todolist/internal/store/jsonstore"
	"github.com/idilsaglam/todolist/internal/store/memstore"
	"github.com/idilsaglam/todolist/internal/store/sqlitestore"
	"github.com/idilsaglam/todolist/internal/todolist"
)

func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.Store {
	case config.StoreJSON:
		return jsonstore.New(cfg.DataFile), nil
	case config.StoreSQLite:
		st, err := sqlitestore.Open(cfg.DataFile)
		if err != nil {
			return nil, err
		}
		return st, nil
	case config.StoreMemory:
		return memstore.New(), nil
	}
	return nil, fmt.Errorf("%w %q", config.ErrUnknownStore, cfg.Store)
}

// session opens the store, loads the starting records and builds the list.
// The caller must call the returned close func.
func (r *Runner) session(ctx context.Context, cfg *config.Config) (*todolist.List, func(), error) {
	st, err := openStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	closeStore := func() {
		if err := st.Close(); err != nil {
			r.logger().Warn("closing store", "err", err)
		}
	}

	token := r.seedToken()
	recs, src, err := loader.Load(ctx, loader.Options{
		Store:   st,
		Key:     cfg.StorageKey,
		SeedURL: cfg.SeedURL,
		Token:   token,
		Timeout: cfg.SeedTimeout,
		Client:  r.Client,
		Logger:  r.logger(),
	})
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	r.logger().Debug("list loaded", "source", src, "records", len(recs), "store", cfg.Store)

	opts := []todolist.Option{
		todolist.WithStore(st),
		todolist.WithKey(cfg.StorageKey),
		todolist.WithLogger(r.logger()),
	}
	if r.Clock != nil {
		opts = append(opts, todolist.WithClock(r.Clock))
	}
	return todolist.New(recs, opts...), closeStore, nil
}

// seedToken returns the bearer token for the seed fetch. A missing,
// unreadable or expired token means an anonymous fetch.
func (r *Runner) seedToken() string {
	k, err := r.keyring()
	if err != nil {
		r.logger().Warn("locating credentials", "err", err)
		return ""
	}
	tok, err := k.Load()
	if err != nil {
		r.logger().Warn("reading token", "err", err)
		return ""
	}
	if tok == nil {
		return ""
	}
	if tok.Expired(r.now()) {
		r.logger().Warn("token expired, fetching without it", "source", tok.Source, "expired", tok.ExpiresAt)
		return ""
	}
	return tok.Value
}
