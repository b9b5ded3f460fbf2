package instancedb_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"tacticore/internal/instancedb"
)

func TestCreateThenGet(t *testing.T) {
	reg, err := instancedb.Open(filepath.Join(t.TempDir(), "instances.db"))
	require.NoError(t, err)
	defer reg.Close()

	inst, err := reg.Create(42)
	require.NoError(t, err)
	require.NotEmpty(t, inst.ID)
	require.Equal(t, int64(42), inst.Seed)

	got, ok, err := reg.Get(inst.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, inst.ID, got.ID)
	require.Equal(t, int64(42), got.Seed)
	require.Equal(t, 0, got.ClientCount)
}

func TestGetMissingInstance(t *testing.T) {
	reg, err := instancedb.Open(filepath.Join(t.TempDir(), "instances.db"))
	require.NoError(t, err)
	defer reg.Close()

	_, ok, err := reg.Get("does-not-exist")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestTouchUpdatesClientCount(t *testing.T) {
	reg, err := instancedb.Open(filepath.Join(t.TempDir(), "instances.db"))
	require.NoError(t, err)
	defer reg.Close()

	inst, err := reg.Create(7)
	require.NoError(t, err)

	require.NoError(t, reg.Touch(inst.ID, 3))

	got, ok, err := reg.Get(inst.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 3, got.ClientCount)
	require.True(t, !got.LastActive.Before(inst.LastActive))
}

func TestListOrdersByLastActive(t *testing.T) {
	reg, err := instancedb.Open(filepath.Join(t.TempDir(), "instances.db"))
	require.NoError(t, err)
	defer reg.Close()

	first, err := reg.Create(1)
	require.NoError(t, err)
	second, err := reg.Create(2)
	require.NoError(t, err)

	require.NoError(t, reg.Touch(first.ID, 1))

	instances, err := reg.List()
	require.NoError(t, err)
	require.Len(t, instances, 2)
	require.Equal(t, first.ID, instances[0].ID)
	require.Equal(t, second.ID, instances[1].ID)
}

func TestReopenPersistsAcrossHandles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "instances.db")

	reg, err := instancedb.Open(path)
	require.NoError(t, err)
	inst, err := reg.Create(99)
	require.NoError(t, err)
	require.NoError(t, reg.Close())

	reopened, err := instancedb.Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, ok, err := reopened.Get(inst.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(99), got.Seed)
}
