package cli

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// TokenEnv overrides the stored token when set.
const TokenEnv = "EMOTION_TOKEN"

// TokenStore keeps the session token between invocations.
type TokenStore struct {
	Path string
}

// DefaultTokenPath is ~/.emotion-tracker/token, or a relative path when the
// home directory is unknown.
func DefaultTokenPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".emotion-tracker", "token")
	}
	return filepath.Join(home, ".emotion-tracker", "token")
}

func (s TokenStore) Load() (string, error) {
	if tok := strings.TrimSpace(os.Getenv(TokenEnv)); tok != "" {
		return tok, nil
	}
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (s TokenStore) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.Path, []byte(token+"\n"), 0o600)
}

func (s TokenStore) Clear() error {
	err := os.Remove(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
