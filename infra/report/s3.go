package report

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/kilianp07/roomload/core/report"
	"github.com/kilianp07/roomload/pkg/export"
)

// S3Config configures an S3Sink.
type S3Config struct {
	Endpoint  string `json:"endpoint"`
	AccessKey string `json:"access_key"`
	SecretKey string `json:"secret_key"`
	UseSSL    bool   `json:"use_ssl"`
	Bucket    string `json:"bucket"`
	// Key may contain {run_id} and {date}; the extension selects the format
	// (.xlsx, .csv or .json).
	Key string `json:"key"`
}

type objectPutter interface {
	PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// S3Sink uploads the report to an S3 compatible object store.
type S3Sink struct {
	cfg    S3Config
	client objectPutter
	last   string
}

// NewS3Sink creates a minio client for cfg.
func NewS3Sink(cfg S3Config) (*S3Sink, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 sink: endpoint and bucket are required")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("s3 sink: %w", err)
	}
	return newS3Sink(cfg, client), nil
}

func newS3Sink(cfg S3Config, client objectPutter) *S3Sink {
	if cfg.Key == "" {
		cfg.Key = "rooms-load/{date}/{run_id}.xlsx"
	}
	return &S3Sink{cfg: cfg, client: client}
}

// Location returns the URL of the last uploaded object.
func (s *S3Sink) Location() string { return s.last }

func (s *S3Sink) Write(ctx context.Context, r *report.Report) error {
	key := strings.NewReplacer(
		"{run_id}", r.RunID,
		"{date}", r.GeneratedAt.UTC().Format("2006-01-02"),
	).Replace(s.cfg.Key)

	var buf bytes.Buffer
	contentType, err := encode(&buf, path.Ext(key), r)
	if err != nil {
		return err
	}
	if _, err := s.client.PutObject(ctx, s.cfg.Bucket, key, &buf, int64(buf.Len()), minio.PutObjectOptions{
		ContentType: contentType,
		UserMetadata: map[string]string{
			"run-id": r.RunID,
		},
	}); err != nil {
		return fmt.Errorf("upload %s/%s: %w", s.cfg.Bucket, key, err)
	}
	s.last = fmt.Sprintf("s3://%s/%s", s.cfg.Bucket, key)
	return nil
}

func encode(w io.Writer, ext string, r *report.Report) (string, error) {
	switch strings.ToLower(ext) {
	case ".csv":
		return "text/csv", export.WriteCSV(w, r, true)
	case ".json":
		return "application/json", export.WriteJSON(w, r)
	case ".xlsx":
		f, err := buildWorkbook(r)
		if err != nil {
			return "", err
		}
		defer func() { _ = f.Close() }()
		_, err = f.WriteTo(w)
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", err
	default:
		return "", fmt.Errorf("unsupported object extension %q", ext)
	}
}
