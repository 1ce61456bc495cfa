package gstorage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

var ErrObjectNotExist = storage.ErrObjectNotExist

const transferTimeout = 50 * time.Second

// Client copies the encrypted sqlite database to & from a cloud storage
// bucket, namespaced by prefix so multiple deployments can share a bucket.
type Client struct {
	storageClient *storage.Client
	bucket        string
	prefix        string
}

func NewClient(ctx context.Context, credentialsFilePath, bucket, prefix string) (*Client, error) {
	var storageClient *storage.Client
	var err error

	if credentialsFilePath != "" {
		storageClient, err = storage.NewClient(ctx, option.WithCredentialsFile(credentialsFilePath))
	} else {
		storageClient, err = storage.NewClient(ctx)
	}

	if err != nil {
		return nil, fmt.Errorf("gstorage.NewClient: %v", err)
	}

	return &Client{storageClient: storageClient, bucket: bucket, prefix: prefix}, nil
}

// UploadFile copies the local file at filePath into the bucket.
func (c *Client) UploadFile(ctx context.Context, filePath string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("os.Open: %v", err)
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(ctx, transferTimeout)
	defer cancel()

	object := c.objectName(filepath.Base(filePath))
	wc := c.storageClient.Bucket(c.bucket).Object(object).NewWriter(ctx)
	if _, err = io.Copy(wc, f); err != nil {
		return fmt.Errorf("io.Copy: %v", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("Writer.Close: %v", err)
	}

	return nil
}

// DownloadFile copies the named object from the bucket to destFileName.
// Returns ErrObjectNotExist when no backup has ever been uploaded.
func (c *Client) DownloadFile(ctx context.Context, objectBaseName, destFileName string) error {
	ctx, cancel := context.WithTimeout(ctx, transferTimeout)
	defer cancel()

	rc, err := c.storageClient.Bucket(c.bucket).Object(c.objectName(objectBaseName)).NewReader(ctx)
	if err == storage.ErrObjectNotExist {
		return err
	}
	if err != nil {
		return fmt.Errorf("Object(%q).NewReader: %v", objectBaseName, err)
	}
	defer rc.Close()

	f, err := os.Create(destFileName)
	if err != nil {
		return fmt.Errorf("os.Create: %v", err)
	}

	if _, err := io.Copy(f, rc); err != nil {
		f.Close()
		return fmt.Errorf("io.Copy: %v", err)
	}

	return f.Close()
}

func (c *Client) objectName(baseName string) string {
	if c.prefix == "" {
		return baseName
	}
	return path.Join(c.prefix, baseName)
}
