package storage

import (
	"bytes"
	"fmt"

	"github.com/google/uuid"
	storage "github.com/supabase-community/storage-go"
)

type Client struct {
	client  *storage.Client
	bucket  string
	baseURL string
}

func NewClient(storageURL, serviceKey, bucket string) (*Client, error) {
	baseURL := storageURL
	if len(baseURL) > 0 && baseURL[len(baseURL)-1] == '/' {
		baseURL = baseURL[:len(baseURL)-1]
	}
	client := storage.NewClient(baseURL+"/storage/v1", serviceKey, nil)

	return &Client{
		client:  client,
		bucket:  bucket,
		baseURL: baseURL,
	}, nil
}

// ObjectPath is where an order image lives in the bucket.
func ObjectPath(companyID, orderID uuid.UUID, filename string) string {
	return fmt.Sprintf("orders/%s/%s/%s", companyID.String(), orderID.String(), filename)
}

// ObjectPrefix covers every image belonging to the order. Deletion lists by
// this prefix, so it must stay in lockstep with ObjectPath.
func ObjectPrefix(companyID, orderID uuid.UUID) string {
	return fmt.Sprintf("orders/%s/%s/", companyID.String(), orderID.String())
}

// UploadOrderImage stores an original order image under
// orders/{company_id}/{order_id}/{filename} and returns the storage path and
// public URL.
func (c *Client) UploadOrderImage(companyID, orderID uuid.UUID, filename string, data []byte, contentType string) (string, string, error) {
	storagePath := ObjectPath(companyID, orderID, filename)

	upsert := true
	_, err := c.client.UploadFile(c.bucket, storagePath, bytes.NewReader(data), storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to upload file: %w", err)
	}

	publicURL := fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.baseURL, c.bucket, storagePath)
	return storagePath, publicURL, nil
}

// DeleteOrderImages removes every stored blob for the order.
func (c *Client) DeleteOrderImages(companyID, orderID uuid.UUID) error {
	prefix := ObjectPrefix(companyID, orderID)

	files, err := c.client.ListFiles(c.bucket, prefix, storage.FileSearchOptions{Limit: 1000})
	if err != nil {
		return fmt.Errorf("failed to list files: %w", err)
	}

	if len(files) > 0 {
		paths := make([]string, len(files))
		for i, file := range files {
			paths[i] = file.Name
		}
		if _, err := c.client.RemoveFile(c.bucket, paths); err != nil {
			return fmt.Errorf("failed to delete files: %w", err)
		}
	}

	return nil
}
