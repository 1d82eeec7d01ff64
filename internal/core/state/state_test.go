package state

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/bizdesk/internal/model"
)

func testKV(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := kv.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Set(ctx, "k", "v1"))
	require.NoError(t, kv.Set(ctx, "k", "v2"))
	v, ok, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v2", v, "last write wins")

	require.NoError(t, kv.Delete(ctx, "k"))
	_, ok, err = kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Delete(ctx, "never-set"))
}

func TestMemory(t *testing.T) {
	testKV(t, NewMemory())
}

func TestSQLite(t *testing.T) {
	kv, err := NewSQLite(":memory:")
	require.NoError(t, err)
	defer kv.Close()
	testKV(t, kv)
}

func TestSQLitePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.db")
	ctx := context.Background()

	kv, err := NewSQLite(path)
	require.NoError(t, err)
	require.NoError(t, kv.Set(ctx, KeySelectedCompany, "c7"))
	require.NoError(t, kv.Close())

	kv, err = NewSQLite(path)
	require.NoError(t, err)
	defer kv.Close()
	v, ok, err := kv.Get(ctx, KeySelectedCompany)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "c7", v)
}

func TestRedis(t *testing.T) {
	addr := os.Getenv("BIZDESK_TEST_REDIS")
	if addr == "" {
		t.Skip("BIZDESK_TEST_REDIS not set")
	}
	kv, err := NewRedis(context.Background(), addr)
	require.NoError(t, err)
	defer kv.Close()
	testKV(t, kv)
}

func TestOpen(t *testing.T) {
	kv, err := Open(context.Background(), Options{Backend: BackendMemory})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, kv)

	_, err = Open(context.Background(), Options{Backend: "etcd"})
	assert.Error(t, err)
}

func TestSessionKeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	s := NewSession(NewMemory())

	_, ok, err := s.SelectedCompany(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SelectCompany(ctx, "c1"))
	require.NoError(t, s.SaveCompany(ctx, model.Company{ID: "c1", CompanyName: "Acme"}))
	require.NoError(t, s.SaveContract(ctx, model.Contract{ID: "k1", ContractAmount: 10}))

	require.NoError(t, s.ClearCompany(ctx))
	id, ok, err := s.SelectedCompany(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "c1", id)

	c, err := s.Company(ctx)
	require.NoError(t, err)
	assert.Nil(t, c)

	k, err := s.Contract(ctx)
	require.NoError(t, err)
	require.NotNil(t, k)
	assert.Equal(t, model.FlexString("k1"), k.ID)

	require.NoError(t, s.Clear(ctx))
	_, ok, _ = s.SelectedCompany(ctx)
	assert.False(t, ok)
}

func TestSessionDropsCorruptValues(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	require.NoError(t, kv.Set(ctx, KeyCompanyInfo, "{not json"))

	c, err := NewSession(kv).Company(ctx)
	require.NoError(t, err)
	assert.Nil(t, c)
	_, ok, _ := kv.Get(ctx, KeyCompanyInfo)
	assert.False(t, ok)
}
