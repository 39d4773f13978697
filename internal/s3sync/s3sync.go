// Package s3sync uploads a finished export tree to S3-compatible object
// storage (AWS or MinIO). It is optional: the run only reaches it when a
// bucket is configured.
package s3sync

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/trellodump/trellodump/internal/logging"
)

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in)
	}
)

type Options struct {
	// Endpoint overrides the AWS endpoint for S3-compatible backends
	// such as MinIO. Empty means plain AWS.
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
}

type Syncer struct {
	opts Options
	log  logging.Logger
}

func New(opts Options, log logging.Logger) *Syncer {
	if log == nil {
		log = logging.Discard()
	}
	return &Syncer{opts: opts, log: log}
}

func (s *Syncer) client(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(s.opts.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.opts.AccessKeyID,
			s.opts.SecretAccessKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if s.opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(s.opts.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// SyncDir uploads every regular file under root. Object keys are the
// slash-separated paths relative to root, so re-syncing an unchanged
// export overwrites objects with identical bytes and the bucket mirrors
// the local tree.
func (s *Syncer) SyncDir(ctx context.Context, root string) error {
	client, err := s.client(ctx)
	if err != nil {
		return fmt.Errorf("s3 client: %w", err)
	}

	var uploaded int
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)

		f, err := os.Open(p)
		if err != nil {
			return err
		}
		defer f.Close()

		if _, err := putObject(client, ctx, &s3.PutObjectInput{
			Bucket: aws.String(s.opts.Bucket),
			Key:    aws.String(key),
			Body:   f,
		}); err != nil {
			return fmt.Errorf("upload %s: %w", key, err)
		}

		uploaded++
		s.log.Debug(ctx, "uploaded object", "key", key)
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info(ctx, "export synced to bucket", "bucket", s.opts.Bucket, "objects", uploaded)
	return nil
}
