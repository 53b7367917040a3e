// Package loader obtains the records a list starts from: the persisted
// value when there is one, otherwise a remote seed fetch. A failed load
// returns an error and no records, so no list is ever built from a
// partial load.
package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/idilsaglam/todolist/internal/model"
	"github.com/idilsaglam/todolist/internal/store"
)

// Source tells where the records came from.
type Source string

const (
	SourceStore  Source = "store"
	SourceRemote Source = "remote"
	SourceEmpty  Source = "empty"
)

// maxBody caps the seed payload.
const maxBody = 4 << 20

// HTTPError is a non-2xx seed response.
type HTTPError struct {
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("unable to fetch data: HTTP %d", e.StatusCode)
}

type Options struct {
	Store store.Store
	Key   string

	// SeedURL is fetched when the store has no value. Empty means start
	// with no records.
	SeedURL string
	// Token, when set, is sent as a bearer token to SeedURL.
	Token   string
	Timeout time.Duration
	Client  *http.Client
	Logger  *log.Logger
}

// Load returns the starting records and their source.
func Load(ctx context.Context, opts Options) ([]model.Record, Source, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	key := opts.Key
	if key == "" {
		key = store.DefaultKey
	}

	if opts.Store != nil {
		raw, ok, err := opts.Store.Get(key)
		if err != nil {
			return nil, "", fmt.Errorf("read store: %w", err)
		}
		if ok {
			recs, err := Project(raw)
			if err != nil {
				return nil, "", fmt.Errorf("stored %q: %w", key, err)
			}
			logger.Debug("loaded from store", "key", key, "records", len(recs))
			return recs, SourceStore, nil
		}
	}

	if opts.SeedURL == "" {
		logger.Debug("nothing persisted, starting empty")
		return []model.Record{}, SourceEmpty, nil
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	recs, err := Fetch(ctx, opts.Client, opts.SeedURL, opts.Token)
	if err != nil {
		return nil, "", err
	}
	logger.Info("seeded from remote", "url", opts.SeedURL, "records", len(recs))
	return recs, SourceRemote, nil
}

// Fetch GETs url and projects the JSON body onto records.
func Fetch(ctx context.Context, client *http.Client, url, token string) ([]model.Record, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{StatusCode: resp.StatusCode}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	recs, err := Project(body)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	return recs, nil
}
