// Package storage publishes produced files to S3-compatible object storage
package storage

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	"github.com/ajitpratap0/ipws/pkg/errors"
)

// Location is a bucket and key prefix parsed from s3://bucket/prefix
type Location struct {
	Bucket string
	Prefix string
}

// ParseURI parses an s3:// URI
func ParseURI(uri string) (Location, error) {
	rest, ok := strings.CutPrefix(uri, "s3://")
	if !ok {
		return Location{}, errors.New(errors.ErrorTypeConfig, "upload URI must use the s3 scheme").WithDetail("uri", uri)
	}

	bucket, prefix, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return Location{}, errors.New(errors.ErrorTypeConfig, "upload URI has no bucket").WithDetail("uri", uri)
	}
	return Location{Bucket: bucket, Prefix: strings.Trim(prefix, "/")}, nil
}

// Key returns the object key for a local file: the prefix joined with the
// file's base name
func (l Location) Key(file string) string {
	if l.Prefix == "" {
		return filepath.Base(file)
	}
	return path.Join(l.Prefix, filepath.Base(file))
}

// URI renders the s3:// URI of a key
func (l Location) URI(key string) string {
	return "s3://" + l.Bucket + "/" + key
}

// UploadConfig configures multipart uploads
type UploadConfig struct {
	// PartSize is the minimum part size for multipart uploads
	PartSize int64
	// Concurrency is the number of concurrent part uploads
	Concurrency int
	// Region overrides the region of the default AWS configuration
	Region string
	// Endpoint targets an S3-compatible service; path-style addressing is
	// used when set
	Endpoint string
}

// DefaultUploadConfig returns settings suited to large Parquet shards
func DefaultUploadConfig() UploadConfig {
	return UploadConfig{
		PartSize:    16 * 1024 * 1024,
		Concurrency: 5,
	}
}

// Uploader copies local files to a Location
type Uploader struct {
	uploader *manager.Uploader
	location Location
	logger   *zap.Logger
}

// NewS3Uploader builds an uploader from the default AWS credential chain
func NewS3Uploader(ctx context.Context, uri string, cfg UploadConfig, logger *zap.Logger) (*Uploader, error) {
	loc, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "load AWS configuration")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewUploader(client, loc, cfg, logger), nil
}

// NewUploader wraps an S3 client
func NewUploader(client manager.UploadAPIClient, loc Location, cfg UploadConfig, logger *zap.Logger) *Uploader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Uploader{
		uploader: manager.NewUploader(client, func(u *manager.Uploader) {
			if cfg.PartSize > 0 {
				u.PartSize = cfg.PartSize
			}
			if cfg.Concurrency > 0 {
				u.Concurrency = cfg.Concurrency
			}
		}),
		location: loc,
		logger:   logger,
	}
}

// Location returns the destination of the uploader
func (u *Uploader) Location() Location {
	return u.location
}

// Upload copies one file and returns its object URI
func (u *Uploader) Upload(ctx context.Context, file string) (string, error) {
	f, err := os.Open(file) //nolint:gosec // G304: path produced by this run
	if err != nil {
		return "", errors.Wrap(err, errors.ErrorTypeFile, "open upload source").WithDetail("path", file)
	}
	defer f.Close()

	key := u.location.Key(file)
	_, err = u.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:            aws.String(u.location.Bucket),
		Key:               aws.String(key),
		Body:              f,
		ChecksumAlgorithm: types.ChecksumAlgorithmCrc32c,
	})
	if err != nil {
		return "", errors.Wrap(err, errors.ErrorTypeStorage, "upload object").
			WithDetail("path", file).
			WithDetail("uri", u.location.URI(key))
	}

	uri := u.location.URI(key)
	u.logger.Info("uploaded file", zap.String("path", file), zap.String("uri", uri))
	return uri, nil
}

// UploadAll uploads files in order, stopping at the first failure
func (u *Uploader) UploadAll(ctx context.Context, files []string) ([]string, error) {
	uris := make([]string, 0, len(files))
	for _, file := range files {
		uri, err := u.Upload(ctx, file)
		if err != nil {
			return uris, err
		}
		uris = append(uris, uri)
	}
	return uris, nil
}
