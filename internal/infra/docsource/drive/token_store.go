package drive

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"

	"github.com/yanqian/faq-relay/internal/domain/auth"
)

// ErrNoToken is returned when no token file exists yet.
var ErrNoToken = errors.New("drive token not found")

// TokenStore persists the OAuth token as JSON, optionally sealed with AES-GCM.
type TokenStore struct {
	path string
	key  string
}

// NewTokenStore returns a store at path. An empty key stores plaintext JSON.
func NewTokenStore(path, key string) *TokenStore {
	return &TokenStore{path: path, key: key}
}

// Load reads the token. Missing files yield ErrNoToken. A plaintext file is
// still accepted when a key is configured; the next Save seals it.
func (s *TokenStore) Load() (*oauth2.Token, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoToken
		}
		return nil, fmt.Errorf("read token file: %w", err)
	}
	if auth.IsSealed(data) {
		if s.key == "" {
			return nil, errors.New("token file is encrypted but no encryption key is configured")
		}
		sealer, err := auth.NewSealer(s.key)
		if err != nil {
			return nil, err
		}
		if data, err = sealer.Open(data); err != nil {
			return nil, fmt.Errorf("decrypt token file: %w", err)
		}
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("parse token file: %w", err)
	}
	return &tok, nil
}

// Save writes the token atomically with owner-only permissions.
func (s *TokenStore) Save(tok *oauth2.Token) error {
	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	if s.key != "" {
		sealer, err := auth.NewSealer(s.key)
		if err != nil {
			return err
		}
		if data, err = sealer.Seal(data); err != nil {
			return fmt.Errorf("encrypt token: %w", err)
		}
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create token dir: %w", err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return os.Rename(tmp, s.path)
}

// persistingTokenSource saves every newly minted access token so a refresh
// survives restarts.
type persistingTokenSource struct {
	base   oauth2.TokenSource
	store  *TokenStore
	logger *slog.Logger

	mu   sync.Mutex
	last string
}

// Token implements oauth2.TokenSource.
func (p *persistingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := p.base.Token()
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if tok.AccessToken != p.last {
		p.last = tok.AccessToken
		if err := p.store.Save(tok); err != nil {
			p.logger.Warn("failed to persist refreshed drive token", "error", err)
		} else {
			p.logger.Info("drive token refreshed", "expiry", tok.Expiry)
		}
	}
	return tok, nil
}
