package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"go.uber.org/zap"
)

// S3Config describes an S3 bucket or a MinIO compatible endpoint
type S3Config struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
	Bucket          string
	UseSSL          bool
}

// S3Storage stores files as objects in a bucket
type S3Storage struct {
	client  s3iface.S3API
	bucket  string
	baseURL string
}

// NewS3Storage opens a session and makes sure the bucket exists
func NewS3Storage(ctx context.Context, cfg S3Config, log *zap.Logger) (*S3Storage, error) {
	awsConfig := &aws.Config{Region: aws.String(cfg.Region)}
	if cfg.AccessKeyID != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}
	// MinIO for local development
	if cfg.Endpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
		awsConfig.DisableSSL = aws.Bool(!cfg.UseSSL)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	client := s3.New(sess)

	_, err = client.HeadBucketWithContext(ctx, &s3.HeadBucketInput{Bucket: aws.String(cfg.Bucket)})
	if err != nil {
		if _, cerr := client.CreateBucketWithContext(ctx, &s3.CreateBucketInput{Bucket: aws.String(cfg.Bucket)}); cerr != nil {
			log.Warn("bucket not reachable", zap.String("bucket", cfg.Bucket), zap.Error(cerr))
		}
	}
	return newS3Storage(client, cfg), nil
}

func newS3Storage(client s3iface.S3API, cfg S3Config) *S3Storage {
	return &S3Storage{client: client, bucket: cfg.Bucket, baseURL: publicBaseURL(cfg)}
}

func publicBaseURL(cfg S3Config) string {
	if cfg.Endpoint != "" && !strings.Contains(cfg.Endpoint, "amazonaws.com") {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		host := strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "http://"), "https://")
		return fmt.Sprintf("%s://%s/%s/", scheme, strings.TrimSuffix(host, "/"), cfg.Bucket)
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/", cfg.Bucket, region)
}

// Save uploads r and returns the object's public URL
func (s *S3Storage) Save(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	body, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
		body = bytes.NewReader(data)
	}
	key := objectKey(name)
	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file to S3: %w", err)
	}
	return s.baseURL + key, nil
}

// Delete removes the object behind ref
func (s *S3Storage) Delete(ctx context.Context, ref string) error {
	key, ok := strings.CutPrefix(ref, s.baseURL)
	if !ok || key == "" {
		return fmt.Errorf("delete %q: %w", ref, ErrUnknownRef)
	}
	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %w", err)
	}
	return nil
}
