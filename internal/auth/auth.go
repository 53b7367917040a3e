// Package auth keeps the bearer token sent to the seed source. The token
// comes from $TODO_TOKEN when set, otherwise from a credentials file in
// ~/.todolist that only the owner can read.
package auth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/idilsaglam/todolist/internal/clock"
)

const (
	EnvToken = "TODO_TOKEN"
	DirName  = ".todolist"
	FileName = "credentials.json"
)

var ErrEmptyToken = errors.New("empty token")

// Source says where a token was found.
type Source string

const (
	SourceEnv  Source = "env"
	SourceFile Source = "file"
)

// Token is a bearer token. ExpiresAt is taken from the JWT exp claim when
// the token is a JWT.
type Token struct {
	Value     string     `json:"token"`
	SavedAt   time.Time  `json:"saved_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`

	Source Source `json:"-"`
}

// Expired reports whether the token has a known expiry before now.
func (t *Token) Expired(now time.Time) bool {
	return t.ExpiresAt != nil && !now.Before(*t.ExpiresAt)
}

// Keyring loads and saves the token under Dir.
type Keyring struct {
	Dir    string
	Getenv func(string) string
	Clock  clock.Clock
}

// Default returns a keyring rooted at ~/.todolist that honors $TODO_TOKEN.
func Default() (*Keyring, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("home dir: %w", err)
	}
	return &Keyring{
		Dir:    filepath.Join(home, DirName),
		Getenv: os.Getenv,
		Clock:  clock.Real(),
	}, nil
}

func (k *Keyring) path() string { return filepath.Join(k.Dir, FileName) }

// Load returns the configured token, or nil when there is none.
func (k *Keyring) Load() (*Token, error) {
	if k.Getenv != nil {
		if v := normalize(k.Getenv(EnvToken)); v != "" {
			return &Token{Value: v, ExpiresAt: expiry(v), Source: SourceEnv}, nil
		}
	}
	b, err := os.ReadFile(k.path())
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	var tok Token
	if err := json.Unmarshal(b, &tok); err != nil {
		return nil, fmt.Errorf("parse credentials %s: %w", k.path(), err)
	}
	tok.Value = normalize(tok.Value)
	if tok.Value == "" {
		return nil, nil
	}
	tok.Source = SourceFile
	return &tok, nil
}

// Save writes raw (with or without a "Bearer " prefix) to the credentials
// file with mode 0600.
func (k *Keyring) Save(raw string) (*Token, error) {
	v := normalize(raw)
	if v == "" {
		return nil, ErrEmptyToken
	}
	now := time.Now()
	if k.Clock != nil {
		now = k.Clock.Now()
	}
	tok := &Token{Value: v, SavedAt: now.UTC(), ExpiresAt: expiry(v), Source: SourceFile}

	b, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal credentials: %w", err)
	}
	if err := os.MkdirAll(k.Dir, 0o700); err != nil {
		return nil, fmt.Errorf("create %s: %w", k.Dir, err)
	}
	if err := os.WriteFile(k.path(), b, 0o600); err != nil {
		return nil, fmt.Errorf("write credentials: %w", err)
	}
	return tok, nil
}

// Delete removes the credentials file. A missing file is not an error.
func (k *Keyring) Delete() error {
	err := os.Remove(k.path())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove credentials: %w", err)
	}
	return nil
}

// Claims decodes the payload of a JWT without verifying it. ok is false
// for opaque tokens.
func Claims(token string) (claims map[string]any, ok bool) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, false
	}
	payload, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(parts[1], "="))
	if err != nil {
		return nil, false
	}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, false
	}
	return claims, true
}

func expiry(token string) *time.Time {
	claims, ok := Claims(token)
	if !ok {
		return nil
	}
	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil
	}
	t := time.Unix(int64(exp), 0).UTC()
	return &t
}

func normalize(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 7 && strings.EqualFold(s[:7], "bearer ") {
		s = strings.TrimSpace(s[7:])
	}
	return s
}
