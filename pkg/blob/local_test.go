package blob

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoragePut(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStorage(dir, "http://localhost:3000/")
	require.NoError(t, err)

	url, err := s.Put(context.Background(), "chatbots/owner-1/faq.md", []byte("hello"), "text/markdown")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000/uploads/chatbots/owner-1/faq.md", url)

	content, err := os.ReadFile(filepath.Join(dir, "chatbots", "owner-1", "faq.md"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))
}

func TestLocalStoragePutRejectsEscapingKey(t *testing.T) {
	parent := t.TempDir()
	dir := filepath.Join(parent, "uploads")
	s, err := NewLocalStorage(dir, "http://localhost:3000")
	require.NoError(t, err)

	_, err = s.Put(context.Background(), "chatbots/owner/../../../escaped.txt", []byte("x"), "text/plain")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "escapes storage dir")

	_, statErr := os.Stat(filepath.Join(parent, "escaped.txt"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestLocalStorageLastWriteWins(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStorage(dir, "http://localhost:3000")
	require.NoError(t, err)

	_, err = s.Put(context.Background(), "chatbots/owner-1/faq.md", []byte("v1"), "text/markdown")
	require.NoError(t, err)
	_, err = s.Put(context.Background(), "chatbots/owner-1/faq.md", []byte("v2"), "text/markdown")
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(dir, "chatbots", "owner-1", "faq.md"))
	require.NoError(t, err)
	assert.Equal(t, "v2", string(content))
}
