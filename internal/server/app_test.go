package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/schedsync/internal/common"
	"github.com/dmitrijs2005/schedsync/internal/server/auth"
	"github.com/dmitrijs2005/schedsync/internal/server/blobstore"
	"github.com/dmitrijs2005/schedsync/internal/server/config"
	"github.com/dmitrijs2005/schedsync/internal/server/repositories/memory"
	"github.com/dmitrijs2005/schedsync/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.DatabaseDSN = config.MemoryDSN
	c.S3BaseEndpoint = config.MemoryEndpoint
	c.EndpointAddrHTTP = "127.0.0.1:0"
	c.EndpointAddrGRPC = "127.0.0.1:0"
	c.ShutdownTimeout = time.Second
	c.LogLevel = "error"
	return c
}

func TestNewApp_MemoryBackends(t *testing.T) {
	app, err := NewApp(context.Background(), memoryConfig())
	require.NoError(t, err)
	assert.IsType(t, &memory.Store{}, app.repos)
	assert.NotNil(t, app.grpcServer)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop after cancel")
	}
}

func TestNewApp_GRPCDisabled(t *testing.T) {
	c := memoryConfig()
	c.EndpointAddrGRPC = ""
	app, err := NewApp(context.Background(), c)
	require.NoError(t, err)
	assert.Nil(t, app.grpcServer)
}

func TestNewApp_PostgresAndS3(t *testing.T) {
	origPG, origS3 := openPostgres, newS3Store
	t.Cleanup(func() { openPostgres, newS3Store = origPG, origS3 })

	var gotDSN string
	openPostgres = func(_ context.Context, dsn string) (repomanager.RepositoryManager, error) {
		gotDSN = dsn
		return memory.New(), nil
	}
	var gotOpts blobstore.S3Options
	newS3Store = func(_ context.Context, opts blobstore.S3Options) (blobstore.Store, error) {
		gotOpts = opts
		return blobstore.NewMemoryStore(), nil
	}

	c := &config.Config{}
	c.LoadDefaults()
	_, err := NewApp(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, c.DatabaseDSN, gotDSN)
	assert.Equal(t, blobstore.S3Options{
		AccessKey: c.S3RootUser,
		SecretKey: c.S3RootPassword,
		Region:    c.S3Region,
		Endpoint:  c.S3BaseEndpoint,
		Bucket:    c.S3Bucket,
	}, gotOpts)
}

func TestNewApp_DatabaseError(t *testing.T) {
	orig := openPostgres
	t.Cleanup(func() { openPostgres = orig })
	openPostgres = func(context.Context, string) (repomanager.RepositoryManager, error) {
		return nil, errors.New("connection refused")
	}

	c := &config.Config{}
	c.LoadDefaults()
	_, err := NewApp(context.Background(), c)
	assert.ErrorContains(t, err, "db init error")
}

func TestNewApp_SeedsMemoryAccounts(t *testing.T) {
	c := memoryConfig()
	c.SeedAccounts = []config.SeedAccount{
		{Username: "alice", Password: "s3cret", ColorCode: "#ff0000"},
		{Username: "bob", Password: "hunter2"},
	}
	app, err := NewApp(context.Background(), c)
	require.NoError(t, err)

	acc, err := app.repos.Accounts().GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "#ff0000", acc.ColorCode)
	assert.True(t, auth.CheckPassword(acc.PasswordHash, "s3cret"))

	_, err = app.repos.Accounts().GetByUsername(context.Background(), "bob")
	require.NoError(t, err)
}

func TestNewApp_InvalidSeedAccount(t *testing.T) {
	c := memoryConfig()
	c.SeedAccounts = []config.SeedAccount{{Username: "alice", Password: ""}}
	_, err := NewApp(context.Background(), c)
	require.ErrorIs(t, err, common.ErrorValidation)
	assert.ErrorContains(t, err, "seed accounts error")
}

func TestNewApp_SeedAccountsIgnoredForPostgres(t *testing.T) {
	orig := openPostgres
	t.Cleanup(func() { openPostgres = orig })
	store := memory.New()
	openPostgres = func(context.Context, string) (repomanager.RepositoryManager, error) {
		return store, nil
	}

	c := memoryConfig()
	c.DatabaseDSN = "postgres://db/schedsync"
	c.SeedAccounts = []config.SeedAccount{{Username: "alice", Password: "s3cret"}}
	_, err := NewApp(context.Background(), c)
	require.NoError(t, err)

	_, err = store.Accounts().GetByUsername(context.Background(), "alice")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
