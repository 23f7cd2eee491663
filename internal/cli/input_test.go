package cli

import (
	"bufio"
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSimpleText(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(bufio.NewReader(strings.NewReader("alice \n")), "Login id", &out)
	require.NoError(t, err)
	assert.Equal(t, "alice", got)
	assert.Equal(t, "Login id\n> ", out.String())

	got, err = GetSimpleText(bufio.NewReader(strings.NewReader("lastline")), "Name", &out)
	require.NoError(t, err)
	assert.Equal(t, "lastline", got)

	_, err = GetSimpleText(bufio.NewReader(strings.NewReader("")), "Name", &out)
	assert.Error(t, err)
}

func TestGetPassword(t *testing.T) {
	old := readPassword
	defer func() { readPassword = old }()

	readPassword = func(int) ([]byte, error) { return []byte("s3cret"), nil }
	var out bytes.Buffer
	pw, err := GetPassword(&out)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", pw)

	readPassword = func(int) ([]byte, error) { return nil, errors.New("boom") }
	_, err = GetPassword(&out)
	assert.Error(t, err)
}

func TestTokenStore(t *testing.T) {
	t.Setenv(TokenEnv, "")
	s := TokenStore{Path: filepath.Join(t.TempDir(), "nested", "token")}

	tok, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, tok)

	require.NoError(t, s.Save("abc"))
	tok, err = s.Load()
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	t.Setenv(TokenEnv, "from-env")
	tok, _ = s.Load()
	assert.Equal(t, "from-env", tok)

	require.NoError(t, s.Clear())
	require.NoError(t, s.Clear())
}
