package export

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// putObjectAPI is the subset of the S3 client the uploader needs.
type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Uploader stores rendered exports in an S3 bucket.
type Uploader struct {
	client putObjectAPI
	bucket string
}

// NewS3Uploader loads the default AWS credential chain for region.
func NewS3Uploader(ctx context.Context, region, bucket string) (*Uploader, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &Uploader{client: s3.NewFromConfig(cfg), bucket: bucket}, nil
}

// ObjectWriter buffers an export and uploads it on Close.
type ObjectWriter struct {
	ctx         context.Context
	client      putObjectAPI
	bucket      string
	key         string
	contentType string
	buffer      bytes.Buffer
}

// NewWriter opens a buffered writer for key.
func (u *Uploader) NewWriter(ctx context.Context, key, contentType string) *ObjectWriter {
	return &ObjectWriter{ctx: ctx, client: u.client, bucket: u.bucket, key: key, contentType: contentType}
}

func (w *ObjectWriter) Write(data []byte) (int, error) {
	return w.buffer.Write(data)
}

// Close uploads the buffered bytes.
func (w *ObjectWriter) Close() error {
	_, err := w.client.PutObject(w.ctx, &s3.PutObjectInput{
		Bucket:      aws.String(w.bucket),
		Key:         aws.String(w.key),
		Body:        bytes.NewReader(w.buffer.Bytes()),
		ContentType: aws.String(w.contentType),
	})
	if err != nil {
		return fmt.Errorf("upload s3://%s/%s: %w", w.bucket, w.key, err)
	}
	return nil
}

// RegisterKey returns registers/<register>/<yyyy-mm>/<uuid>.csv.
func RegisterKey(register, month string) string {
	return path.Join("registers", register, month, uuid.NewString()+".csv")
}

// UploadRegisterCSV renders sheet as CSV and stores it under a fresh key.
func (u *Uploader) UploadRegisterCSV(ctx context.Context, sheet RegisterSheet) (string, error) {
	key := RegisterKey(string(sheet.Register), sheet.Month)
	w := u.NewWriter(ctx, key, "text/csv")
	if err := WriteRegisterCSV(w, sheet); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return key, nil
}
