package sync

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API is the subset of the S3 client S3Destination uses.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Destination writes the export to an object in an S3-compatible bucket.
type S3Destination struct {
	client S3API
	bucket string
	key    string
}

// NewS3Destination creates an S3 destination from the default AWS
// credential chain. A non-empty endpoint enables path-style addressing for
// MinIO and similar services.
func NewS3Destination(ctx context.Context, bucket, key, region, endpoint string) (*S3Destination, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	var s3opts []func(*s3.Options)
	if endpoint != "" {
		s3opts = append(s3opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		})
	}
	return NewS3DestinationWithClient(s3.NewFromConfig(cfg, s3opts...), bucket, key), nil
}

// NewS3DestinationWithClient wraps an existing client.
func NewS3DestinationWithClient(client S3API, bucket, key string) *S3Destination {
	return &S3Destination{client: client, bucket: bucket, key: key}
}

func (d *S3Destination) String() string { return "s3://" + d.bucket + "/" + d.key }

// Write uploads data as the configured object key.
func (d *S3Destination) Write(ctx context.Context, data []byte) error {
	_, err := d.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(d.bucket),
		Key:         aws.String(d.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/x-ndjson"),
	})
	if err != nil {
		return fmt.Errorf("s3 put object: %w", err)
	}
	return nil
}
