// Package storage keeps build snapshots (matrix, catalog, metadata) in
// S3-compatible object storage.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/mfenderov/bookrec/internal/catalog"
	"github.com/mfenderov/bookrec/internal/similarity"
	"github.com/mfenderov/bookrec/pkg/models"
)

const (
	snapshotsRoot  = "snapshots"
	matrixObject   = "similarity.bin"
	catalogObject  = "books.csv"
	metadataObject = "metadata.json"
)

// Config holds S3/MinIO client configuration.
type Config struct {
	Endpoint        string // "localhost:9000" for MinIO
	Bucket          string // "bookrec"
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
}

// Client wraps the MinIO/S3 client for snapshot operations.
type Client struct {
	minioClient *minio.Client
	bucket      string
}

// New creates a new S3/MinIO client.
func New(config Config) (*Client, error) {
	if config.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if config.Bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}

	minioClient, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.AccessKeyID, config.SecretAccessKey, ""),
		Secure: config.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &Client{
		minioClient: minioClient,
		bucket:      config.Bucket,
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist.
func (c *Client) EnsureBucket(ctx context.Context) error {
	exists, err := c.minioClient.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if exists {
		return nil
	}

	err = c.minioClient.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{})
	if err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// SnapshotMetadata describes one build snapshot.
type SnapshotMetadata struct {
	CreatedAt  string `json:"created_at"`
	Source     string `json:"source"` // Catalog path the build read
	Books      int    `json:"books"`
	Vocabulary int    `json:"vocabulary"`
	EmptyDocs  int    `json:"empty_docs"`
}

// SnapshotPrefix returns the object prefix for a snapshot taken at t.
// Prefixes sort chronologically.
func SnapshotPrefix(t time.Time) string {
	return path.Join(snapshotsRoot, t.UTC().Format("2006-01-02T15-04-05Z"))
}

// PutMatrix writes the similarity matrix in its binary format.
func (c *Client) PutMatrix(ctx context.Context, prefix string, m *similarity.Matrix) error {
	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		return fmt.Errorf("failed to encode matrix: %w", err)
	}
	if err := c.put(ctx, path.Join(prefix, matrixObject), buf.Bytes(), "application/octet-stream"); err != nil {
		return fmt.Errorf("failed to put matrix: %w", err)
	}
	return nil
}

// GetMatrix reads and validates the similarity matrix of a snapshot.
func (c *Client) GetMatrix(ctx context.Context, prefix string) (*similarity.Matrix, error) {
	object, err := c.minioClient.GetObject(ctx, c.bucket, path.Join(prefix, matrixObject), minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get matrix: %w", err)
	}
	defer object.Close()

	m, err := similarity.ReadMatrix(object)
	if err != nil {
		return nil, fmt.Errorf("failed to read matrix: %w", err)
	}
	return m, nil
}

// PutCatalog writes the catalog the matrix was built from as CSV.
func (c *Client) PutCatalog(ctx context.Context, prefix string, books []models.Book) error {
	var buf bytes.Buffer
	if err := catalog.Write(&buf, books); err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	if err := c.put(ctx, path.Join(prefix, catalogObject), buf.Bytes(), "text/csv"); err != nil {
		return fmt.Errorf("failed to put catalog: %w", err)
	}
	return nil
}

// GetCatalog reads the catalog of a snapshot.
func (c *Client) GetCatalog(ctx context.Context, prefix string) ([]models.Book, error) {
	object, err := c.minioClient.GetObject(ctx, c.bucket, path.Join(prefix, catalogObject), minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog: %w", err)
	}
	defer object.Close()

	books, err := catalog.Load(object)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return books, nil
}

// PutMetadata writes the snapshot metadata JSON. It is written last so a
// snapshot without metadata is incomplete.
func (c *Client) PutMetadata(ctx context.Context, prefix string, meta SnapshotMetadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if err := c.put(ctx, path.Join(prefix, metadataObject), data, "application/json"); err != nil {
		return fmt.Errorf("failed to put metadata: %w", err)
	}
	return nil
}

// GetMetadata reads the snapshot metadata.
func (c *Client) GetMetadata(ctx context.Context, prefix string) (*SnapshotMetadata, error) {
	object, err := c.minioClient.GetObject(ctx, c.bucket, path.Join(prefix, metadataObject), minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata: %w", err)
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}

	var meta SnapshotMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}

	return &meta, nil
}

// ListSnapshots returns the prefixes of complete snapshots, oldest first.
func (c *Client) ListSnapshots(ctx context.Context) ([]string, error) {
	var prefixes []string

	objectCh := c.minioClient.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{
		Prefix:    snapshotsRoot + "/",
		Recursive: true,
	})

	for object := range objectCh {
		if object.Err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", object.Err)
		}
		if strings.HasSuffix(object.Key, "/"+metadataObject) {
			prefixes = append(prefixes, path.Dir(object.Key))
		}
	}

	sort.Strings(prefixes)
	return prefixes, nil
}

// LatestSnapshot returns the newest complete snapshot prefix.
func (c *Client) LatestSnapshot(ctx context.Context) (string, error) {
	prefixes, err := c.ListSnapshots(ctx)
	if err != nil {
		return "", err
	}
	if len(prefixes) == 0 {
		return "", fmt.Errorf("no snapshots in bucket %s", c.bucket)
	}
	return prefixes[len(prefixes)-1], nil
}

// Bucket returns the bucket name.
func (c *Client) Bucket() string {
	return c.bucket
}

func (c *Client) put(ctx context.Context, objectName string, data []byte, contentType string) error {
	_, err := c.minioClient.PutObject(ctx, c.bucket, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}
