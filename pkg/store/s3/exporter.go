package s3

import (
	"bytes"
	"context"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

const (
	DefaultRegion = "eu-north-1" // Default region if not specified in AWS profile
	contentType   = "application/json"
)

// PutObjectAPI is the part of the S3 client the exporter needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Exporter struct {
	client PutObjectAPI
	bucket string
}

func LoadConfig(ctx context.Context, profile string) (*awssdk.Config, error) {
	opts := []func(*config.LoadOptions) error{config.WithDefaultRegion(DefaultRegion)}
	if profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}

	// Test the credentials
	_, err = awsCfg.Credentials.Retrieve(ctx)
	if err != nil {
		return nil, fmt.Errorf("invalid AWS credentials for profile %s: %w", profile, err)
	}

	return &awsCfg, nil
}

func NewExporter(client PutObjectAPI, bucket string) (*Exporter, error) {
	if client == nil {
		return nil, fmt.Errorf("s3 client is nil")
	}
	if bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}
	return &Exporter{client: client, bucket: bucket}, nil
}

func NewExporterFromProfile(ctx context.Context, profile, bucket string) (*Exporter, error) {
	cfg, err := LoadConfig(ctx, profile)
	if err != nil {
		return nil, err
	}
	return NewExporter(s3.NewFromConfig(*cfg), bucket)
}

// Upload stores a JSON report under key.
func (e *Exporter) Upload(ctx context.Context, key string, body []byte) error {
	if key == "" {
		return fmt.Errorf("object key is required")
	}

	_, err := e.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        awssdk.String(e.bucket),
		Key:           awssdk.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   awssdk.String(contentType),
		ContentLength: awssdk.Int64(int64(len(body))),
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", e.bucket, key, err)
	}

	zerolog.Ctx(ctx).Info().
		Str("bucket", e.bucket).
		Str("key", key).
		Int("bytes", len(body)).
		Msg("report exported")
	return nil
}
