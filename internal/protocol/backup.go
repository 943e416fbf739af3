package protocol

// Backup describes one uploaded database backup.
type Backup struct {
	ID         int64  `json:"id"`
	FilePath   string `json:"file_path"`
	FileSize   int64  `json:"file_size"`
	Notes      string `json:"notes"`
	BackupDate string `json:"backup_date"`
}

// UploadResponse acknowledges POST /api/upload.
type UploadResponse struct {
	Message  string `json:"message"`
	FilePath string `json:"file_path"`
}

// PresignedURLResponse carries a temporary download link.
type PresignedURLResponse struct {
	URL string `json:"url"`
}
