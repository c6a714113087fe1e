package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectPutter is the subset of the S3 client the exporter needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Config struct {
	Bucket   string
	Key      string
	Region   string
	Endpoint string
	// PathStyle is needed by most S3-compatible stores such as MinIO.
	PathStyle bool
}

type S3Exporter struct {
	client ObjectPutter
	bucket string
	key    string
}

func NewS3Exporter(client ObjectPutter, bucket, key string) (*S3Exporter, error) {
	if bucket == "" {
		return nil, errors.New("s3 export: bucket is required")
	}
	if key == "" {
		return nil, errors.New("s3 export: object key is required")
	}
	return &S3Exporter{client: client, bucket: bucket, key: key}, nil
}

// NewS3Client loads credentials from the default AWS chain.
func NewS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
	}), nil
}

func (e *S3Exporter) Export(ctx context.Context, mapping map[string]string) (Result, error) {
	data, err := Encode(mapping)
	if err != nil {
		return Result{}, err
	}

	_, err = e.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(e.bucket),
		Key:         aws.String(e.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return Result{}, fmt.Errorf("upload s3://%s/%s: %w", e.bucket, e.key, err)
	}

	return Result{Destinations: []string{e.Location()}, Entries: len(mapping)}, nil
}

func (e *S3Exporter) Location() string {
	return fmt.Sprintf("s3://%s/%s", e.bucket, e.key)
}
