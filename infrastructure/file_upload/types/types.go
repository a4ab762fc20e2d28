package types

import "time"

type FileUploaderType interface {
	GeneratedSignedURL(fileName string, permission SignedURLPermission, expiry time.Duration) (*string, error)
	UploadBytes(fileName string, payload []byte) error
	DownloadToFile(fileName string, destPath string) error
	CheckFileExists(fileName string) (bool, error)
	DeleteFile(fileName string) error
}

type SignedURLPermission struct {
	Read   bool `json:"read"`
	Write  bool `json:"write"`
	Delete bool `json:"delete"`
}
