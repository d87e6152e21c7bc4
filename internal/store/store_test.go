package store_test

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/izzsandya6-dev/gemini-ai-health/internal/db"
	"github.com/izzsandya6-dev/gemini-ai-health/internal/store"
)

func newSQLiteStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	sqldb, err := db.Open(filepath.Join(t.TempDir(), "healthguard.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqldb.Close() })
	require.NoError(t, db.ApplyMigrations(sqldb))
	return store.NewSQLiteStore(sqldb)
}

func newRedisStore(t *testing.T) *store.RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return store.NewRedisStore(client, "hg:")
}

func backends(t *testing.T) map[string]store.Store {
	return map[string]store.Store{
		"memory": store.NewMemoryStore(),
		"sqlite": newSQLiteStore(t),
		"redis":  newRedisStore(t),
	}
}

func TestStoreGetSetDelete(t *testing.T) {
	t.Parallel()
	for name, st := range backends(t) {
		st := st
		t.Run(name, func(t *testing.T) {
			_, ok, err := st.Get(store.KeyProfile)
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, st.Set(store.KeyProfile, []byte(`{"name":"Ayu"}`)))
			got, ok, err := st.Get(store.KeyProfile)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.JSONEq(t, `{"name":"Ayu"}`, string(got))

			require.NoError(t, st.Set(store.KeyProfile, []byte(`{"name":"Budi"}`)))
			got, _, err = st.Get(store.KeyProfile)
			require.NoError(t, err)
			assert.JSONEq(t, `{"name":"Budi"}`, string(got))

			require.NoError(t, st.Delete(store.KeyProfile))
			_, ok, err = st.Get(store.KeyProfile)
			require.NoError(t, err)
			assert.False(t, ok)

			// deleting an absent key is not an error
			require.NoError(t, st.Delete(store.KeyProfile))
		})
	}
}

func TestStoreRejectsEmptyKey(t *testing.T) {
	t.Parallel()
	for name, st := range backends(t) {
		st := st
		t.Run(name, func(t *testing.T) {
			_, _, err := st.Get("")
			assert.ErrorIs(t, err, store.ErrEmptyKey)
			assert.ErrorIs(t, st.Set("", []byte("x")), store.ErrEmptyKey)
		})
	}
}

func TestStoreUpdateSkipsWriteAndPropagatesErrors(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	for name, st := range backends(t) {
		st := st
		t.Run(name, func(t *testing.T) {
			require.NoError(t, st.Set(store.KeyFoodHistory, []byte(`[]`)))

			err := st.Update(store.KeyFoodHistory, func(cur []byte, ok bool) ([]byte, bool, error) {
				return []byte(`[1]`), true, boom
			})
			assert.ErrorIs(t, err, boom)

			err = st.Update(store.KeyFoodHistory, func(cur []byte, ok bool) ([]byte, bool, error) {
				return []byte(`[2]`), false, nil
			})
			require.NoError(t, err)

			got, _, err := st.Get(store.KeyFoodHistory)
			require.NoError(t, err)
			assert.Equal(t, `[]`, string(got))
		})
	}
}

func TestStoreUpdateDoesNotLoseConcurrentWrites(t *testing.T) {
	t.Parallel()
	for name, st := range backends(t) {
		st := st
		t.Run(name, func(t *testing.T) {
			const writers = 20
			var wg sync.WaitGroup
			for i := 0; i < writers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					err := st.Update(store.KeyAuthenticated, func(cur []byte, ok bool) ([]byte, bool, error) {
						n := 0
						if ok {
							if _, err := fmt.Sscanf(string(cur), "%d", &n); err != nil {
								return nil, false, err
							}
						}
						return []byte(fmt.Sprintf("%d", n+1)), true, nil
					})
					assert.NoError(t, err)
				}()
			}
			wg.Wait()

			got, ok, err := st.Get(store.KeyAuthenticated)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, fmt.Sprintf("%d", writers), string(got))
		})
	}
}

func TestSQLiteStoreTracksRevisions(t *testing.T) {
	t.Parallel()
	st := newSQLiteStore(t)

	require.NoError(t, st.Set(store.KeyChatSessions, []byte(`[]`)))
	require.NoError(t, st.Set(store.KeyChatSessions, []byte(`[{"id":"a"}]`)))

	info, ok, err := st.Stat(store.KeyChatSessions)
	require.NoError(t, err)
	require.True(t, ok)
	assert.EqualValues(t, 2, info.Revision)
	assert.Equal(t, len(`[{"id":"a"}]`), info.SizeBytes)

	_, ok, err = st.Stat(store.KeyProfile)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteStoreIsDurableAcrossConnections(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "healthguard.db")

	first, err := db.Open(path)
	require.NoError(t, err)
	require.NoError(t, db.ApplyMigrations(first))
	require.NoError(t, store.NewSQLiteStore(first).Set(store.KeyAuthenticated, []byte("true")))
	require.NoError(t, first.Close())

	second, err := db.Open(path)
	require.NoError(t, err)
	defer second.Close()
	got, ok, err := store.NewSQLiteStore(second).Get(store.KeyAuthenticated)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "true", string(got))
}

func TestRedisStoreUsesPrefix(t *testing.T) {
	t.Parallel()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	st := store.NewRedisStore(client, "hg:")
	require.NoError(t, st.Set(store.KeyProfile, []byte(`{}`)))

	raw, err := mr.Get("hg:profile")
	require.NoError(t, err)
	assert.Equal(t, `{}`, raw)
}
