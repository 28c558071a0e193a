package filestore_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/httpsession/pkg/filestore"
	"github.com/dmitrymomot/httpsession/pkg/session"
	"github.com/dmitrymomot/httpsession/pkg/session/storetest"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestStore_Conformance(t *testing.T) {
	clk := &clock{now: time.Date(2021, 10, 29, 19, 0, 0, 0, time.UTC)}

	storetest.Run(t, storetest.Harness{
		NewStore: func(t *testing.T) session.Store {
			store, err := filestore.New(t.TempDir(), time.Minute, filestore.WithClock(clk.Now))
			require.NoError(t, err)
			return store
		},
		Advance: clk.Advance,
	})
}

func TestNew(t *testing.T) {
	_, err := filestore.New("", time.Minute)
	assert.ErrorIs(t, err, filestore.ErrInvalidConfig)

	dir := filepath.Join(t.TempDir(), "nested", "sessions")
	store, err := filestore.NewFromConfig(filestore.Config{Dir: dir}, time.Minute)
	require.NoError(t, err)
	assert.DirExists(t, store.Dir())
}

func TestStore_RejectsUnsafeIDs(t *testing.T) {
	store, err := filestore.New(t.TempDir(), time.Minute)
	require.NoError(t, err)
	ctx := context.Background()

	for _, id := range []string{"", "../escape", "a/b", "a.b", "with space", string(make([]byte, 200))} {
		_, err := store.Get(ctx, id)
		assert.ErrorIs(t, err, session.ErrInvalidID, "%q", id)
		assert.ErrorIs(t, store.Set(ctx, id, session.Data{}), session.ErrInvalidID, "%q", id)
	}
}

func TestStore_TouchOnlyChangesModTime(t *testing.T) {
	clk := &clock{now: time.Date(2021, 10, 29, 19, 0, 0, 0, time.UTC)}
	store, err := filestore.New(t.TempDir(), time.Minute, filestore.WithClock(clk.Now))
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "abc", session.Data{"k": "v"}))
	path := filepath.Join(store.Dir(), "abc.json")
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	clk.Advance(30 * time.Second)
	require.NoError(t, store.Touch(ctx, "abc"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(clk.Now()))

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestStore_IgnoresForeignFiles(t *testing.T) {
	store, err := filestore.New(t.TempDir(), time.Minute)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), "README"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), ".tmp-123"), []byte("x"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(store.Dir(), "sub.json"), 0o700))
	require.NoError(t, store.Set(context.Background(), "abc", session.Data{}))

	ids, err := store.IDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"abc"}, ids)
	require.NoError(t, store.FlushExpired(context.Background()))
}
