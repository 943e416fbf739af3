package services

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/schedsync/internal/client/client"
	"github.com/dmitrijs2005/schedsync/internal/logging"
	"github.com/dmitrijs2005/schedsync/internal/protocol"
	"github.com/dmitrijs2005/schedsync/internal/server/blobstore"
	"github.com/dmitrijs2005/schedsync/internal/server/config"
	"github.com/dmitrijs2005/schedsync/internal/server/httpapi"
	"github.com/dmitrijs2005/schedsync/internal/server/repositories/memory"
	srvservices "github.com/dmitrijs2005/schedsync/internal/server/services"
)

const testAppSecret = "app-secret"

// ---- fake client ----

type fakeClient struct {
	access, refresh string

	loginResp *protocol.LoginResponse
	loginErr  error
	pingErr   error

	syncReqs []protocol.SyncRequest
	syncResp *protocol.SyncResponse
	syncErr  error
	// rotate, when set, replaces the token pair during Sync as a refresh would.
	rotate []string
}

func (f *fakeClient) Close() error                   { return nil }
func (f *fakeClient) Ping(ctx context.Context) error { return f.pingErr }

func (f *fakeClient) Login(ctx context.Context, username, password string) (*protocol.LoginResponse, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	f.access, f.refresh = f.loginResp.Token, f.loginResp.RefreshToken
	return f.loginResp, nil
}

func (f *fakeClient) Sync(ctx context.Context, req *protocol.SyncRequest) (*protocol.SyncResponse, error) {
	f.syncReqs = append(f.syncReqs, *req)
	if len(f.rotate) == 2 {
		f.access, f.refresh = f.rotate[0], f.rotate[1]
	}
	if f.syncErr != nil {
		return nil, f.syncErr
	}
	return f.syncResp, nil
}

func (f *fakeClient) SetTokens(a, r string)    { f.access, f.refresh = a, r }
func (f *fakeClient) Tokens() (string, string) { return f.access, f.refresh }

func newRepos(t *testing.T) *client.Repositories {
	t.Helper()
	repos, err := client.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.Close() })
	return repos
}

// ---- live server ----

// newServer starts the real HTTP API over an in-memory store with two
// accounts, alice/s3cret and bob/hunter2.
func newServer(t *testing.T, propagateDeletes bool) string {
	t.Helper()
	store := memory.New()

	accounts := srvservices.NewAccountService(store)
	_, err := accounts.Create(context.Background(), "alice", "s3cret", "#ff0000")
	require.NoError(t, err)
	_, err = accounts.Create(context.Background(), "bob", "hunter2", "#0000ff")
	require.NoError(t, err)

	cfg := &config.Config{
		SecretKey:                    "jwt-secret",
		AccessTokenValidityDuration:  time.Minute,
		RefreshTokenValidityDuration: time.Hour,
	}
	authSvc := srvservices.NewAuthService(store, cfg, logging.Nop{})
	syncSvc := srvservices.NewSyncService(srvservices.NewReconciler(store, logging.Nop{}, propagateDeletes), logging.Nop{})
	backupSvc := srvservices.NewBackupService(store, blobstore.NewMemoryStore(), "public/schedsync.apk", logging.Nop{})

	srv := httpapi.NewHTTPServer(httpapi.Options{AppSecret: testAppSecret}, logging.Nop{}, authSvc, syncSvc, backupSvc)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts.URL
}

// device is one client installation: its own local database and session.
type device struct {
	auth         AuthService
	sync         SyncService
	appointments AppointmentService
	notes        NoteService
}

func newDevice(t *testing.T, url, username, password string) *device {
	t.Helper()
	repos := newRepos(t)
	c := client.NewHTTPClient(url, testAppSecret, 5*time.Second)
	t.Cleanup(func() { _ = c.Close() })

	d := &device{
		auth:         NewAuthService(c, repos),
		sync:         NewSyncService(c, repos, logging.Nop{}),
		appointments: NewAppointmentService(repos),
		notes:        NewNoteService(repos),
	}
	_, err := d.auth.Login(context.Background(), username, password)
	require.NoError(t, err)
	return d
}

func ptr[T any](v T) *T { return &v }
