package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/johnquangdev/meeting-sync/pkg/config"
)

// PayloadArchive keeps raw webhook bodies in a MinIO bucket
type PayloadArchive struct {
	client *minio.Client
	bucket string
	now    func() time.Time
}

// NewPayloadArchive creates a MinIO client and makes sure the bucket exists
func NewPayloadArchive(ctx context.Context, cfg *config.ArchiveConfig) (*PayloadArchive, error) {
	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	a := &PayloadArchive{
		client: minioClient,
		bucket: cfg.BucketName,
		now:    time.Now,
	}
	if err := a.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize bucket: %w", err)
	}
	return a, nil
}

// ensureBucket creates the archive bucket if needed. Objects stay private.
func (a *PayloadArchive) ensureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}
	return nil
}

// ObjectName returns <accountId>/<yyyy-mm-dd>/<requestId>.json. A missing
// request id is replaced with a random one.
func ObjectName(accountID, requestID string, at time.Time) string {
	if requestID == "" {
		requestID = uuid.NewString()
	}
	return path.Join(accountID, at.UTC().Format("2006-01-02"), requestID+".json")
}

// Archive uploads a raw webhook body
func (a *PayloadArchive) Archive(ctx context.Context, accountID, requestID string, raw []byte) error {
	objectName := ObjectName(accountID, requestID, a.now())
	_, err := a.client.PutObject(ctx, a.bucket, objectName, bytes.NewReader(raw), int64(len(raw)), minio.PutObjectOptions{
		ContentType: "application/json",
		UserMetadata: map[string]string{
			"account-id": accountID,
			"request-id": requestID,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to upload payload: %w", err)
	}
	return nil
}

// List lists archived object names for an account
func (a *PayloadArchive) List(ctx context.Context, accountID string) ([]string, error) {
	var files []string

	objectCh := a.client.ListObjects(ctx, a.bucket, minio.ListObjectsOptions{
		Prefix:    accountID + "/",
		Recursive: true,
	})
	for object := range objectCh {
		if object.Err != nil {
			return nil, fmt.Errorf("error listing objects: %w", object.Err)
		}
		files = append(files, object.Key)
	}
	return files, nil
}
