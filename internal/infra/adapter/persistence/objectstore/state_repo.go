// Package objectstore stores the seen-state as a single JSON object in an S3 (or
// S3-compatible) bucket, for deployments without a persistent disk.
package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"rss-monitor/internal/domain/entity"
	"rss-monitor/internal/infra/adapter/persistence/statejson"
	"rss-monitor/internal/repository"
)

// Config contains minimal configuration for creating an S3 client.
// Empty values fall back to the standard AWS config/credential chain.
type Config struct {
	Region string
	// Endpoint overrides the service endpoint (MinIO, R2, ...).
	Endpoint string
	// UsePathStyle forces path-style addressing (useful for some S3-compatible providers).
	UsePathStyle bool
}

// ObjectAPI is the part of the S3 client the repository needs.
type ObjectAPI interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// NewClient builds an S3 client from the default AWS configuration chain.
func NewClient(ctx context.Context, cfg Config) (*s3.Client, error) {
	var loadOpts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(cfg.Region))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}

// StateRepo keeps the seen-state as a single JSON object in a bucket.
type StateRepo struct {
	client ObjectAPI
	bucket string
	key    string
}

// NewStateRepo returns a repository storing the state at bucket/key.
func NewStateRepo(client ObjectAPI, bucket, key string) repository.StateRepository {
	return &StateRepo{client: client, bucket: bucket, key: key}
}

// Load fetches and decodes the state object. A missing object is an empty state.
func (repo *StateRepo) Load(ctx context.Context) (entity.SeenState, error) {
	out, err := repo.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(repo.bucket),
		Key:    aws.String(repo.key),
	})
	if err != nil {
		if isNotFound(err) {
			return entity.SeenState{}, nil
		}
		return nil, fmt.Errorf("Load: GetObject: %w", err)
	}
	defer func() { _ = out.Body.Close() }()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("Load: read body: %w", err)
	}
	state, err := statejson.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("Load: s3://%s/%s: %w", repo.bucket, repo.key, err)
	}
	return state, nil
}

// Save uploads the whole document; S3 object writes are atomic.
func (repo *StateRepo) Save(ctx context.Context, state entity.SeenState) error {
	data, err := statejson.Marshal(state)
	if err != nil {
		return fmt.Errorf("Save: %w", err)
	}
	_, err = repo.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(repo.bucket),
		Key:         aws.String(repo.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json; charset=utf-8"),
	})
	if err != nil {
		return fmt.Errorf("Save: PutObject: %w", err)
	}
	return nil
}

func isNotFound(err error) bool {
	var noSuchKey *s3types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}
