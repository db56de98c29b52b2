package storage

import (
	"context"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
)

// S3Backend uploads public-read objects to a bucket.
type S3Backend struct {
	bucket        string
	publicBaseURL string
	uploader      s3manageriface.UploaderAPI
}

// NewS3Backend creates an S3 session for region. When publicBaseURL is set
// (a CDN in front of the bucket) it replaces the location S3 reports.
func NewS3Backend(bucket, region, publicBaseURL string) (*S3Backend, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, err
	}
	return NewS3BackendWithUploader(bucket, publicBaseURL, s3manager.NewUploader(sess)), nil
}

// NewS3BackendWithUploader uses an existing uploader.
func NewS3BackendWithUploader(bucket, publicBaseURL string, uploader s3manageriface.UploaderAPI) *S3Backend {
	return &S3Backend{
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		uploader:      uploader,
	}
}

func (b *S3Backend) Name() string { return "s3" }

func (b *S3Backend) Put(ctx context.Context, key string, f *os.File, contentType string) (string, error) {
	out, err := b.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		ACL:         aws.String("public-read"),
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", err
	}
	if b.publicBaseURL != "" {
		return b.publicBaseURL + "/" + key, nil
	}
	return out.Location, nil
}
