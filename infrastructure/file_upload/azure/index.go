package azure

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"facegate.io/infrastructure/file_upload/types"
	"facegate.io/infrastructure/logger"
	_azblob "github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	azblob_sas "github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/sas"
	azblob "github.com/Azure/azure-storage-blob-go/azblob"
)

type AzureBlobService struct {
	AccountName   string
	ContainerName string
	AccountKey    string
}

func (azService *AzureBlobService) GeneratedSignedURL(fileName string, permission types.SignedURLPermission, expiry time.Duration) (*string, error) {
	if permission.Read == permission.Write {
		return nil, errors.New("permission must be either read or write")
	}
	_credential, err := _azblob.NewSharedKeyCredential(azService.AccountName, azService.AccountKey)
	if err != nil {
		logger.Error("error generated _azblob shared key credential", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return nil, err
	}

	credential, err := azblob.NewSharedKeyCredential(azService.AccountName, azService.AccountKey)
	if err != nil {
		logger.Error("error generated azblob shared key credential", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return nil, err
	}
	URL, err := url.Parse(fmt.Sprintf("https://%s.blob.core.windows.net/%s/%s", azService.AccountName, azService.ContainerName, fileName))
	if err != nil {
		logger.Error("error parsing shared token url", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return nil, err
	}
	blobURL := azblob.NewBlockBlobURL(*URL, azblob.NewPipeline(credential, azblob.PipelineOptions{}))

	sasQueryParams, err := azblob_sas.BlobSignatureValues{
		Protocol:      azblob_sas.ProtocolHTTPS,
		StartTime:     time.Now().UTC(),
		ExpiryTime:    time.Now().UTC().Add(expiry),
		Permissions:   (&azblob_sas.BlobPermissions{Read: permission.Read, Write: permission.Write, Delete: permission.Delete}).String(),
		ContainerName: azService.ContainerName,
		BlobName:      fileName,
	}.SignWithSharedKey(_credential)
	if err != nil {
		logger.Error("error blob signature values", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return nil, err
	}
	sasURL := fmt.Sprintf("%s?%s", blobURL.String(), sasQueryParams.Encode())
	return &sasURL, nil
}

func (azService *AzureBlobService) UploadBytes(fileName string, payload []byte) error {
	client, err := azService.serviceClient()
	if err != nil {
		return err
	}
	_, err = client.UploadBuffer(context.TODO(), azService.ContainerName, fileName, payload, nil)
	if err != nil {
		logger.Error("error uploading blob", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "fileName",
			Data: fileName,
		})
		return err
	}
	return nil
}

func (azService *AzureBlobService) DownloadToFile(fileName string, destPath string) error {
	client, err := azService.serviceClient()
	if err != nil {
		return err
	}
	dest, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer dest.Close()
	_, err = client.DownloadFile(context.TODO(), azService.ContainerName, fileName, dest, nil)
	if err != nil {
		logger.Error("error downloading blob", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "fileName",
			Data: fileName,
		})
		return err
	}
	return nil
}

func (azService *AzureBlobService) DeleteFile(fileName string) error {
	credential, err := azblob.NewSharedKeyCredential(azService.AccountName, azService.AccountKey)
	if err != nil {
		logger.Error("error generated azblob shared key credential", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return err
	}
	URL, err := url.Parse(fmt.Sprintf("https://%s.blob.core.windows.net/%s/%s", azService.AccountName, azService.ContainerName, fileName))
	if err != nil {
		logger.Error("error parsing shared token url", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return err
	}
	blobURL := azblob.NewBlockBlobURL(*URL, azblob.NewPipeline(credential, azblob.PipelineOptions{}))
	_, err = blobURL.Delete(context.TODO(), azblob.DeleteSnapshotsOptionInclude, azblob.BlobAccessConditions{})
	if err != nil {
		logger.Error("error deleting blob", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return err
	}
	return nil
}

func (azService *AzureBlobService) CheckFileExists(fileName string) (bool, error) {
	credential, err := azblob.NewSharedKeyCredential(azService.AccountName, azService.AccountKey)
	if err != nil {
		logger.Error("error generated azblob shared key credential", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return false, err
	}
	URL, err := url.Parse(fmt.Sprintf("https://%s.blob.core.windows.net/%s/%s", azService.AccountName, azService.ContainerName, fileName))
	if err != nil {
		logger.Error("error parsing shared token url", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return false, err
	}
	blobURL := azblob.NewBlockBlobURL(*URL, azblob.NewPipeline(credential, azblob.PipelineOptions{}))
	_, err = blobURL.GetProperties(context.TODO(), azblob.BlobAccessConditions{}, azblob.ClientProvidedKeyOptions{})
	if err != nil {
		if serr, ok := err.(azblob.StorageError); ok {
			if serr.ServiceCode() == azblob.ServiceCodeBlobNotFound {
				return false, nil
			}
		}
		return false, err
	}
	return true, nil
}

func (azService *AzureBlobService) serviceClient() (*_azblob.Client, error) {
	credential, err := _azblob.NewSharedKeyCredential(azService.AccountName, azService.AccountKey)
	if err != nil {
		logger.Error("error generated _azblob shared key credential", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return nil, err
	}
	serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net/", azService.AccountName)
	client, err := _azblob.NewClientWithSharedKeyCredential(serviceURL, credential, nil)
	if err != nil {
		logger.Error("error creating azblob client", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return nil, err
	}
	return client, nil
}
