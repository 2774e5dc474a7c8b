package gravit

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryClipboard(t *testing.T) {
	c := NewMemoryClipboard()
	_, ok := c.Content(MimePattern)
	assert.False(t, ok)
	assert.Empty(t, c.MimeTypes())

	c.SetContent(MimePattern, "C#ff0000")
	got, ok := c.Content(MimePattern)
	assert.True(t, ok)
	assert.Equal(t, "C#ff0000", got)
	assert.Equal(t, []string{MimePattern}, c.MimeTypes())

	// A new copy replaces every earlier entry.
	c.SetContent(MimeAttribute, "{}")
	_, ok = c.Content(MimePattern)
	assert.False(t, ok)
	assert.Equal(t, []string{MimeAttribute}, c.MimeTypes())
}

func openTestStorage(t *testing.T) *BoltStorage {
	t.Helper()
	st, err := OpenBoltStorage(filepath.Join(t.TempDir(), "docs.db"), "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestBoltStorageSaveLoad(t *testing.T) {
	st := openTestStorage(t)
	ctx := context.Background()
	assert.True(t, st.IsAvailable())
	assert.False(t, st.IsSaving())

	require.NoError(t, st.Save(ctx, "doc/1", []byte("hello"), false))
	data, err := st.Load(ctx, "doc/1", false)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	_, err = st.Load(ctx, "doc/2", false)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBoltStorageBinary(t *testing.T) {
	st := openTestStorage(t)
	ctx := context.Background()
	blob := []byte{0xff, 0xfe, 0x00, 0x80}

	assert.ErrorIs(t, st.Save(ctx, "bin", blob, false), ErrInvalidValue, "text save rejects non-UTF-8")
	require.NoError(t, st.Save(ctx, "bin", blob, true))

	_, err := st.Load(ctx, "bin", false)
	assert.ErrorIs(t, err, ErrInvalidValue, "text load rejects non-UTF-8")
	data, err := st.Load(ctx, "bin", true)
	require.NoError(t, err)
	assert.Equal(t, blob, data)
}

func TestBoltStorageCanceledContext(t *testing.T) {
	st := openTestStorage(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, st.Save(ctx, "x", []byte("y"), false), context.Canceled)
	_, err := st.Load(ctx, "x", false)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBoltStorageClosed(t *testing.T) {
	st := openTestStorage(t)
	require.NoError(t, st.Close())
	require.NoError(t, st.Close())
	assert.False(t, st.IsAvailable())
	_, err := st.Load(context.Background(), "x", false)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestSaveLoadDocument(t *testing.T) {
	st := openTestStorage(t)
	ctx := context.Background()
	e, _, shared, _ := editorScene(t)
	ref := ReferenceID(shared)
	_ = e.SetProperties("Rename", shared, []string{"name"}, []any{"Saved"})

	require.NoError(t, e.SaveDocument(ctx, st, "doc"))
	old := e.Scene()
	s, err := e.LoadDocument(ctx, st, "doc")
	require.NoError(t, err)

	assert.NotSame(t, old, s)
	assert.Same(t, s, e.Scene())
	assert.False(t, e.UndoList().CanUndo(), "loading clears the history")
	require.NotNil(t, s.StyleByRef(ref))
	assert.Equal(t, "Saved", s.StyleByRef(ref).Name())
	assert.Equal(t, 2, s.LinkCount(ref))

	// Edits on the loaded scene are journaled.
	r := s.Layers()[0].ChildAt(0)
	require.NoError(t, e.SetProperties("Move", r, []string{"x"}, []any{12.0}))
	assert.Equal(t, "Move", e.UndoList().UndoTitle())

	_, err = e.LoadDocument(ctx, st, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Same(t, s, e.Scene(), "failed load keeps the current scene")
}

func TestDocumentWithoutStorage(t *testing.T) {
	e, _, _, _ := editorScene(t)
	assert.ErrorIs(t, e.SaveDocument(context.Background(), nil, "doc"), ErrStorageUnavailable)
	_, err := e.LoadDocument(context.Background(), nil, "doc")
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}
