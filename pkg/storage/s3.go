package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/JaimeStill/folio/pkg/lifecycle"
)

type s3Store struct {
	client  *s3.Client
	presign *s3.PresignClient
	buckets []string
	logger  *slog.Logger
}

func newS3(cfg *Config, logger *slog.Logger) (System, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3.Region),
	}
	if cfg.S3.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3.AccessKeyID, cfg.S3.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3.Endpoint)
		}
		o.UsePathStyle = cfg.S3.UsePathStyle
	})

	return &s3Store{
		client:  client,
		presign: s3.NewPresignClient(client),
		buckets: cfg.Buckets,
		logger:  logger,
	}, nil
}

func (s *s3Store) Start(lc *lifecycle.Coordinator) error {
	s.logger.Info("starting storage system")

	lc.OnStartup(func() {
		for _, bucket := range s.buckets {
			_, err := s.client.HeadBucket(lc.Context(), &s3.HeadBucketInput{
				Bucket: aws.String(bucket),
			})
			if err != nil {
				s.logger.Error("storage bucket unavailable", "bucket", bucket, "error", err)
				continue
			}
			s.logger.Info("storage bucket ready", "bucket", bucket)
		}
	})

	return nil
}

func (s *s3Store) Exists(ctx context.Context, bucket, key string) (bool, error) {
	if err := ValidateKey(bucket, key); err != nil {
		return false, err
	}

	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isS3NotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("s3 head object %s/%s: %w", bucket, key, err)
	}

	return true, nil
}

func (s *s3Store) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	if err := ValidateKey(bucket, key); err != nil {
		return nil, err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("s3 get object %s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("s3 read object %s/%s: %w", bucket, key, err)
	}

	return data, nil
}

func (s *s3Store) Put(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	if err := ValidateKey(bucket, key); err != nil {
		return err
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return fmt.Errorf("s3 put object %s/%s: %w", bucket, key, err)
	}

	return nil
}

// Delete probes first: S3 reports success when deleting a missing key.
func (s *s3Store) Delete(ctx context.Context, bucket, key string) error {
	exists, err := s.Exists(ctx, bucket, key)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete object %s/%s: %w", bucket, key, err)
	}

	return nil
}

func (s *s3Store) DeletePrefix(ctx context.Context, bucket, prefix string) (int, error) {
	if err := ValidateKey(bucket, prefix); err != nil {
		return 0, err
	}

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})

	deleted := 0
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return deleted, fmt.Errorf("s3 list objects %s/%s: %w", bucket, prefix, err)
		}

		for _, obj := range page.Contents {
			_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
				Bucket: aws.String(bucket),
				Key:    obj.Key,
			})
			if err != nil {
				return deleted, fmt.Errorf("s3 delete object %s/%s: %w", bucket, aws.ToString(obj.Key), err)
			}
			deleted++
		}
	}

	return deleted, nil
}

func (s *s3Store) SignedURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	if err := ValidateKey(bucket, key); err != nil {
		return "", err
	}

	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("s3 presign %s/%s: %w", bucket, key, err)
	}

	return req.URL, nil
}

func isS3NotFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}
	return false
}
