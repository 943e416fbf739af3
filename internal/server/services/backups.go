package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dmitrijs2005/schedsync/internal/common"
	"github.com/dmitrijs2005/schedsync/internal/logging"
	"github.com/dmitrijs2005/schedsync/internal/protocol"
	"github.com/dmitrijs2005/schedsync/internal/server/blobstore"
	"github.com/dmitrijs2005/schedsync/internal/server/models"
	"github.com/dmitrijs2005/schedsync/internal/server/repositories/repomanager"
)

const (
	presignTTL        = 15 * time.Minute
	backupContentType = "application/octet-stream"
)

// BackupService stores database backups in the blob store with a metadata
// row per upload, and serves the public release package.
type BackupService struct {
	repomanager repomanager.RepositoryManager
	blobs       blobstore.Store
	releaseKey  string
	log         logging.Logger
	now         func() time.Time
}

func NewBackupService(m repomanager.RepositoryManager, blobs blobstore.Store, releaseKey string, log logging.Logger) *BackupService {
	return &BackupService{
		repomanager: m,
		blobs:       blobs,
		releaseKey:  releaseKey,
		log:         log.With("module", "backups"),
		now:         time.Now,
	}
}

// BackupKey names the object of a backup taken at t, e.g.
// backup_2024-05-01T10-00-00-000Z.db.
func BackupKey(t time.Time) string {
	stamp := t.UTC().Format("2006-01-02T15:04:05.000Z")
	stamp = strings.NewReplacer(":", "-", ".", "-").Replace(stamp)
	return "backup_" + stamp + ".db"
}

// Upload stores body under a generated key and records its metadata.
func (s *BackupService) Upload(ctx context.Context, body io.Reader, size int64, notes string) (*models.Backup, error) {
	key := BackupKey(s.now())
	if err := s.blobs.Put(ctx, key, body, size, backupContentType); err != nil {
		return nil, fmt.Errorf("storing backup: %w", err)
	}
	b, err := s.repomanager.Backups().Create(ctx, &models.Backup{FilePath: key, FileSize: size, Notes: notes})
	if err != nil {
		return nil, fmt.Errorf("recording backup: %w", err)
	}
	s.log.Info(ctx, "backup uploaded", "key", key, "size", size)
	return b, nil
}

func (s *BackupService) List(ctx context.Context) ([]protocol.Backup, error) {
	list, err := s.repomanager.Backups().List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]protocol.Backup, 0, len(list))
	for _, b := range list {
		out = append(out, backupView(b))
	}
	return out, nil
}

// Open returns the body of backup id. Unknown ids and missing objects yield
// common.ErrorNotFound.
func (s *BackupService) Open(ctx context.Context, id int64) (io.ReadCloser, *models.Backup, *blobstore.ObjectInfo, error) {
	b, err := s.repomanager.Backups().GetByID(ctx, id)
	if err != nil {
		return nil, nil, nil, err
	}
	body, info, err := s.blobs.Get(ctx, b.FilePath)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.log.Warn(ctx, "backup object missing", "id", id, "key", b.FilePath)
		}
		return nil, nil, nil, err
	}
	return body, b, info, nil
}

// PresignedURL returns a temporary direct download link for backup id.
func (s *BackupService) PresignedURL(ctx context.Context, id int64) (string, error) {
	b, err := s.repomanager.Backups().GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return s.blobs.PresignGet(ctx, b.FilePath, presignTTL)
}

// Release opens the public release package.
func (s *BackupService) Release(ctx context.Context) (io.ReadCloser, *blobstore.ObjectInfo, error) {
	return s.blobs.Get(ctx, s.releaseKey)
}

// ReleaseName is the download file name of the release package.
func (s *BackupService) ReleaseName() string {
	if i := strings.LastIndex(s.releaseKey, "/"); i >= 0 {
		return s.releaseKey[i+1:]
	}
	return s.releaseKey
}
