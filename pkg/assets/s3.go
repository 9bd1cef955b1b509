package assets

import (
	"context"
	"mime"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Store serves assets from an S3 bucket.
//
// Example:
//
//	cfg, _ := config.LoadDefaultConfig(context.Background())
//	store := assets.NewS3Store(s3.NewFromConfig(cfg), "my-bucket", "static/")
type S3Store struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Store creates a store over the given bucket. Prefix is prepended
// to every asset name (e.g. "static/").
func NewS3Store(client *s3.Client, bucket, prefix string) *S3Store {
	return &S3Store{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}
}

// Open fetches the named object. Any backend failure reads as missing;
// the serving layer answers 404 either way and must not leak bucket
// details to clients.
func (s *S3Store) Open(ctx context.Context, name string) (*File, error) {
	if !validName(name) {
		return nil, ErrNotFound
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.prefix + name),
	})
	if err != nil {
		return nil, ErrNotFound
	}

	contentType := ""
	if out.ContentType != nil {
		contentType = *out.ContentType
	}
	if contentType == "" || contentType == "application/octet-stream" {
		if byExt := mime.TypeByExtension(path.Ext(name)); byExt != "" {
			contentType = byExt
		}
	}

	f := &File{
		Name:        name,
		ContentType: contentType,
		Reader:      out.Body,
	}
	if out.ContentLength != nil {
		f.Size = *out.ContentLength
	}
	if out.LastModified != nil {
		f.ModTime = *out.LastModified
	}
	return f, nil
}
