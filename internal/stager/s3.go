package stager

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

// S3Config holds object-store staging parameters.
// Zero values mean "unspecified" and will be replaced by defaults.
type S3Config struct {
	Bucket string `json:"bucket" yaml:"bucket" toml:"bucket"`
	Region string `json:"region" yaml:"region" toml:"region"`
	// Endpoint overrides the AWS endpoint for S3-compatible stores (MinIO etc.).
	Endpoint string `json:"endpoint" yaml:"endpoint" toml:"endpoint"`
	// Prefix is the key prefix for staged objects. Objects are never deleted
	// by meshd; attach a bucket lifecycle rule to this prefix for expiry.
	Prefix string `json:"prefix" yaml:"prefix" toml:"prefix"`
	// PublicBaseURL is the base of the returned public URL. Defaults to the
	// virtual-hosted bucket URL, or Endpoint/Bucket when Endpoint is set.
	PublicBaseURL string `json:"public_base_url" yaml:"public_base_url" toml:"public_base_url"`
	AccessKey     string `json:"access_key" yaml:"access_key" toml:"access_key"`
	SecretKey     string `json:"secret_key" yaml:"secret_key" toml:"secret_key"`
}

// s3api is the subset of the S3 client the uploader needs.
type s3api interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Uploader stages decoded image bytes as publicly readable objects.
type S3Uploader struct {
	client s3api
	cfg    S3Config
	now    func() time.Time
}

// NewS3Uploader builds an uploader from cfg. Static credentials are used when
// provided, otherwise the default AWS credential chain applies.
func NewS3Uploader(ctx context.Context, cfg S3Config) (*S3Uploader, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 staging: bucket is required")
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "staged/"
	}
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3 staging: load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Uploader{client: client, cfg: cfg, now: time.Now}, nil
}

// Upload writes data under a time-based object name with the declared content
// type and public-read ACL, returning the deterministic public URL.
func (u *S3Uploader) Upload(ctx context.Context, data []byte, contentType string) (string, error) {
	key := u.objectKey(contentType)
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		ACL:         s3types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return u.publicURL(key), nil
}

func (u *S3Uploader) objectKey(contentType string) string {
	name := fmt.Sprintf("%s-%s.%s",
		u.now().UTC().Format("20060102T150405"),
		uuid.NewString(),
		ExtFromMIME(contentType))
	return u.cfg.Prefix + name
}

func (u *S3Uploader) publicURL(key string) string {
	if u.cfg.PublicBaseURL != "" {
		return strings.TrimSuffix(u.cfg.PublicBaseURL, "/") + "/" + key
	}
	if u.cfg.Endpoint != "" {
		return strings.TrimSuffix(u.cfg.Endpoint, "/") + "/" + u.cfg.Bucket + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.cfg.Bucket, u.cfg.Region, key)
}
