package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/schedsync/internal/common"
	"github.com/dmitrijs2005/schedsync/internal/server/auth"
	"github.com/dmitrijs2005/schedsync/internal/server/repositories/memory"
	"github.com/dmitrijs2005/schedsync/internal/server/repositories/repomanager"
)

func useStore(t *testing.T) (*memory.Store, *string) {
	t.Helper()
	store := memory.New()
	var gotDSN string
	old := openStore
	t.Cleanup(func() { openStore = old })
	openStore = func(ctx context.Context, dsn string) (repomanager.RepositoryManager, error) {
		gotDSN = dsn
		return store, nil
	}
	return store, &gotDSN
}

func execute(stdin string, args ...string) (string, error) {
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAdd_CreatesAccount(t *testing.T) {
	store, dsn := useStore(t)

	out, err := execute("s3cret\n", "add", "-u", "carol", "--color", "#00ff00", "--password-stdin", "-d", "postgres://db/schedsync")
	require.NoError(t, err)
	assert.Equal(t, "Created account carol (#1)\n", out)
	assert.Equal(t, "postgres://db/schedsync", *dsn)

	acc, err := store.Accounts().GetByUsername(context.Background(), "carol")
	require.NoError(t, err)
	assert.Equal(t, "#00ff00", acc.ColorCode)
	assert.True(t, auth.CheckPassword(acc.PasswordHash, "s3cret"))
}

func TestAdd_PromptsForPassword(t *testing.T) {
	store, _ := useStore(t)
	old := readPassword
	t.Cleanup(func() { readPassword = old })
	readPassword = func(int) ([]byte, error) { return []byte("hunter2"), nil }

	_, err := execute("", "add", "--username", "dave")
	require.NoError(t, err)

	acc, err := store.Accounts().GetByUsername(context.Background(), "dave")
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword(acc.PasswordHash, "hunter2"))
}

func TestAdd_Errors(t *testing.T) {
	useStore(t)

	_, err := execute("pw\n", "add", "--password-stdin")
	require.Error(t, err, "username is required")

	_, err = execute("\n", "add", "-u", "erin", "--password-stdin")
	require.ErrorIs(t, err, common.ErrorValidation)

	_, err = execute("pw\n", "add", "-u", "erin", "--color", "red", "--password-stdin")
	require.ErrorIs(t, err, common.ErrorValidation)

	old := readPassword
	t.Cleanup(func() { readPassword = old })
	readPassword = func(int) ([]byte, error) { return nil, errors.New("no tty") }
	_, err = execute("", "add", "-u", "erin")
	require.Error(t, err)
}

func TestAdd_RejectsMemoryStore(t *testing.T) {
	_, dsn := useStore(t)

	_, err := execute("pw\n", "add", "-u", "erin", "--password-stdin", "-d", "memory")
	require.ErrorIs(t, err, errMemoryStore)
	assert.Empty(t, *dsn, "store must not be opened")
}
