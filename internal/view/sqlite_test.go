package view

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "prefs.db")

	s, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	_, err = s.Get(ctx, "collection_view_users_t1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put(ctx, "collection_view_users_t1", "grid"))
	v, err := s.Get(ctx, "collection_view_users_t1")
	require.NoError(t, err)
	assert.Equal(t, "grid", v)

	// Overwrite on repeated change.
	require.NoError(t, s.Put(ctx, "collection_view_users_t1", "list"))
	v, err = s.Get(ctx, "collection_view_users_t1")
	require.NoError(t, err)
	assert.Equal(t, "list", v)
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "prefs.db")

	s, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, "collection_view_users_t1", "grid"))
	require.NoError(t, s.Close())

	s2, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { s2.Close() })

	v, err := s2.Get(ctx, "collection_view_users_t1")
	require.NoError(t, err)
	assert.Equal(t, "grid", v)
}
