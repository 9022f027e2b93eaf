package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	go_json "github.com/goccy/go-json"
	"golang.org/x/oauth2"
)

var (
	ErrNoToken      = errors.New("no token found - please authenticate first")
	ErrTokenExpired = errors.New("token expired and no refresh token available")
)

var _ oauth2.TokenSource = (*FileTokenSource)(nil)

// FileTokenSource serves the OAuth token persisted at path, refreshing
// and re-persisting it through config when it has expired. config may be
// nil for tokens that cannot be refreshed.
type FileTokenSource struct {
	path   string
	config *oauth2.Config

	mu    sync.Mutex
	token *oauth2.Token
}

func NewFileTokenSource(path string, config *oauth2.Config) *FileTokenSource {
	return &FileTokenSource{
		path:   path,
		config: config,
	}
}

func (s *FileTokenSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != nil && s.token.Valid() {
		return s.token, nil
	}

	token, err := readToken(s.path)
	if err != nil {
		return nil, err
	}

	if token.Valid() {
		s.token = token
		return token, nil
	}

	if token.RefreshToken == "" || s.config == nil {
		return nil, ErrTokenExpired
	}

	src := s.config.TokenSource(context.Background(), token)

	newToken, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}

	if err := SaveToken(s.path, newToken); err != nil {
		return nil, fmt.Errorf("failed to save refreshed token: %w", err)
	}

	s.token = newToken

	return newToken, nil
}

// HasToken reports whether a token is persisted, without validating it.
func (s *FileTokenSource) HasToken() (bool, error) {
	if _, err := os.Stat(s.path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func readToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoToken
		}
		return nil, fmt.Errorf("failed to load token: %w", err)
	}

	var token oauth2.Token
	if err := go_json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	return &token, nil
}

// SaveToken persists token at path, readable only by the owner.
func SaveToken(path string, token *oauth2.Token) error {
	data, err := go_json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write token: %w", err)
	}
	return nil
}

// ClearToken removes the persisted token. Missing files are not an
// error.
func ClearToken(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove token: %w", err)
	}
	return nil
}
