package controller

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"facegate.io/application/utils"
	fileupload "facegate.io/infrastructure/file_upload"
	file_upload_types "facegate.io/infrastructure/file_upload/types"
	queue_tasks "facegate.io/infrastructure/message_queue/tasks"
)

type fakeUploader struct {
	existingKeys    map[string]bool
	downloadPayload []byte
	signErr         error
	lastPermission  file_upload_types.SignedURLPermission
}

func (f *fakeUploader) GeneratedSignedURL(fileName string, permission file_upload_types.SignedURLPermission, expiry time.Duration) (*string, error) {
	f.lastPermission = permission
	if f.signErr != nil {
		return nil, f.signErr
	}
	return utils.GetStringPointer("https://blob.test/" + fileName + "?sig=abc"), nil
}

func (f *fakeUploader) UploadBytes(fileName string, payload []byte) error {
	return nil
}

func (f *fakeUploader) DownloadToFile(fileName string, destPath string) error {
	if !f.existingKeys[fileName] {
		return errors.New("blob not found")
	}
	return os.WriteFile(destPath, f.downloadPayload, 0o644)
}

func (f *fakeUploader) CheckFileExists(fileName string) (bool, error) {
	return f.existingKeys[fileName], nil
}

func (f *fakeUploader) DeleteFile(fileName string) error {
	return nil
}

func swapUploader(t *testing.T, fake *fakeUploader) {
	t.Helper()
	previous := fileupload.FileUploader
	fileupload.FileUploader = fake
	t.Cleanup(func() { fileupload.FileUploader = previous })
}

func swapTempAssetDir(t *testing.T) string {
	t.Helper()
	previous := queue_tasks.TempAssetDir
	dir := t.TempDir()
	queue_tasks.TempAssetDir = dir
	t.Cleanup(func() { queue_tasks.TempAssetDir = previous })
	return dir
}

func TestResolveVideoAsset(t *testing.T) {
	payload := []byte("not really a video, but bytes on disk")

	t.Run("local path is used as is", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "staged.mp4")
		if err := os.WriteFile(path, payload, 0o644); err != nil {
			t.Fatal(err)
		}
		asset, err := resolveVideoAsset(nil, &path)
		if err != nil {
			t.Fatalf("resolveVideoAsset() error = %v", err)
		}
		if asset.Path != path {
			t.Errorf("asset.Path = %q, want %q", asset.Path, path)
		}
		if asset.SizeBytes != int64(len(payload)) {
			t.Errorf("asset.SizeBytes = %d, want %d", asset.SizeBytes, len(payload))
		}
	})

	t.Run("missing key is rejected before download", func(t *testing.T) {
		swapUploader(t, &fakeUploader{existingKeys: map[string]bool{}})
		swapTempAssetDir(t)
		key := "videos/unknown.mp4"
		_, err := resolveVideoAsset(&key, nil)
		if err == nil || !strings.Contains(err.Error(), "does not exist in storage") {
			t.Fatalf("resolveVideoAsset() error = %v, want a missing blob error", err)
		}
	})

	t.Run("existing key is downloaded into the temp dir", func(t *testing.T) {
		key := "videos/known.mp4"
		swapUploader(t, &fakeUploader{
			existingKeys:    map[string]bool{key: true},
			downloadPayload: payload,
		})
		dir := swapTempAssetDir(t)
		asset, err := resolveVideoAsset(&key, nil)
		if err != nil {
			t.Fatalf("resolveVideoAsset() error = %v", err)
		}
		if !strings.HasPrefix(asset.Path, dir) {
			t.Errorf("asset.Path = %q, want it under %q", asset.Path, dir)
		}
		if asset.SizeBytes != int64(len(payload)) {
			t.Errorf("asset.SizeBytes = %d, want %d", asset.SizeBytes, len(payload))
		}
	})

	t.Run("no source at all", func(t *testing.T) {
		if _, err := resolveVideoAsset(nil, nil); err == nil {
			t.Fatal("expected an error when no source is provided")
		}
	})
}

func TestSignedPortraitURL(t *testing.T) {
	t.Run("returns a read scoped url", func(t *testing.T) {
		fake := &fakeUploader{}
		swapUploader(t, fake)
		url := signedPortraitURL("faces/abc.jpg")
		if url == nil {
			t.Fatal("expected a signed url")
		}
		if !strings.Contains(*url, "faces/abc.jpg") {
			t.Errorf("url = %q, want it to reference the image key", *url)
		}
		if !fake.lastPermission.Read || fake.lastPermission.Write || fake.lastPermission.Delete {
			t.Errorf("permission = %+v, want read only", fake.lastPermission)
		}
	})

	t.Run("empty key yields no url", func(t *testing.T) {
		swapUploader(t, &fakeUploader{})
		if signedPortraitURL("") != nil {
			t.Error("expected nil for an empty key")
		}
	})

	t.Run("signing failure degrades to no url", func(t *testing.T) {
		swapUploader(t, &fakeUploader{signErr: errors.New("credentials expired")})
		if signedPortraitURL("faces/abc.jpg") != nil {
			t.Error("expected nil when signing fails")
		}
	})
}
