// Package storage keeps generated image bytes in a blob store and issues
// time-limited URLs for them.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API is the subset of the S3 client used for uploads and listings.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// PresignAPI issues signed GET requests.
type PresignAPI interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

type S3Options struct {
	Client    S3API
	Presigner PresignAPI
}

type S3Store struct {
	client    S3API
	presigner PresignAPI
}

// NewS3Store wires a store around a concrete client, deriving the presigner
// from it.
func NewS3Store(client *s3.Client) *S3Store {
	return &S3Store{client: client, presigner: s3.NewPresignClient(client)}
}

func NewS3StoreWithOptions(opts S3Options) (*S3Store, error) {
	if opts.Client == nil || opts.Presigner == nil {
		return nil, errors.New("storage: s3 client and presigner are required")
	}
	return &S3Store{client: opts.Client, presigner: opts.Presigner}, nil
}

func (s *S3Store) Put(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("storage: put s3://%s/%s: %w", bucket, key, err)
	}
	return nil
}

func (s *S3Store) PresignGet(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("storage: presign s3://%s/%s: %w", bucket, key, err)
	}
	return req.URL, nil
}
