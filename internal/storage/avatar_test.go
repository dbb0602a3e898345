package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAvatarStore_SaveAndRemove(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	s, err := NewAvatarStore(dir, 0)
	require.NoError(t, err)
	require.Equal(t, DefaultMaxBytes, s.MaxBytes)

	name, err := s.Save("Me.PNG", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(name, ".png"))
	require.Len(t, name, 36+len(".png"))

	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	require.Equal(t, "png-bytes", string(data))

	other, err := s.Save("me.png", strings.NewReader("x"))
	require.NoError(t, err)
	require.NotEqual(t, name, other)

	require.NoError(t, s.Remove(name))
	_, err = os.Stat(filepath.Join(dir, name))
	require.True(t, os.IsNotExist(err))
	require.NoError(t, s.Remove(name))
}

func TestAvatarStore_RejectsType(t *testing.T) {
	s, err := NewAvatarStore(t.TempDir(), 10)
	require.NoError(t, err)

	_, err = s.Save("script.svg", strings.NewReader("<svg/>"))
	require.ErrorIs(t, err, ErrUnsupportedType)
	_, err = s.Save("noext", strings.NewReader("x"))
	require.ErrorIs(t, err, ErrUnsupportedType)
}

func TestAvatarStore_TooLarge(t *testing.T) {
	dir := t.TempDir()
	s, err := NewAvatarStore(dir, 10)
	require.NoError(t, err)

	_, err = s.Save("big.jpg", bytes.NewReader(make([]byte, 11)))
	require.ErrorIs(t, err, ErrTooLarge)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)

	_, err = s.Save("exact.jpg", bytes.NewReader(make([]byte, 10)))
	require.NoError(t, err)
}

func TestAvatarStore_RemoveIgnoresPaths(t *testing.T) {
	dir := t.TempDir()
	outside := filepath.Join(dir, "keep.png")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o644))

	s, err := NewAvatarStore(filepath.Join(dir, "uploads"), 0)
	require.NoError(t, err)
	require.NoError(t, s.Remove("../keep.png"))
	require.NoError(t, s.Remove(""))

	_, err = os.Stat(outside)
	require.NoError(t, err)
}
