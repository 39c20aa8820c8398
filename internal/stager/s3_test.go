package stager

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type fakePutter struct {
	calls int
	last  *s3.PutObjectInput
	err   error
}

func (f *fakePutter) PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.calls++
	f.last = in
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func fixedNow() time.Time {
	return time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)
}

func TestS3UploadWritesPublicObject(t *testing.T) {
	fp := &fakePutter{}
	u := &S3Uploader{client: fp, cfg: S3Config{Bucket: "assets", Region: "eu-west-1", Prefix: "staged/"}, now: fixedNow}
	url, err := u.Upload(context.Background(), []byte{1, 2, 3}, "image/jpeg")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if fp.calls != 1 {
		t.Fatalf("put calls = %d", fp.calls)
	}
	in := fp.last
	if *in.Bucket != "assets" {
		t.Fatalf("bucket %q", *in.Bucket)
	}
	if in.ACL != s3types.ObjectCannedACLPublicRead {
		t.Fatalf("acl %q", in.ACL)
	}
	if *in.ContentType != "image/jpeg" {
		t.Fatalf("content type %q", *in.ContentType)
	}
	if !strings.HasPrefix(*in.Key, "staged/20250314T150926-") || !strings.HasSuffix(*in.Key, ".jpg") {
		t.Fatalf("key %q", *in.Key)
	}
	body, err := io.ReadAll(in.Body)
	if err != nil || len(body) != 3 {
		t.Fatalf("body len=%d err=%v", len(body), err)
	}
	want := "https://assets.s3.eu-west-1.amazonaws.com/" + *in.Key
	if url != want {
		t.Fatalf("url %q, want %q", url, want)
	}
}

func TestS3UploadPublicBaseURL(t *testing.T) {
	fp := &fakePutter{}
	u := &S3Uploader{client: fp, cfg: S3Config{Bucket: "b", Prefix: "p/", PublicBaseURL: "https://cdn.example.com/"}, now: fixedNow}
	url, err := u.Upload(context.Background(), []byte("x"), "image/png")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !strings.HasPrefix(url, "https://cdn.example.com/p/") {
		t.Fatalf("url %q", url)
	}
}

func TestS3UploadEndpointURL(t *testing.T) {
	fp := &fakePutter{}
	u := &S3Uploader{client: fp, cfg: S3Config{Bucket: "b", Prefix: "p/", Endpoint: "http://127.0.0.1:9000"}, now: fixedNow}
	url, err := u.Upload(context.Background(), []byte("x"), "image/png")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !strings.HasPrefix(url, "http://127.0.0.1:9000/b/p/") {
		t.Fatalf("url %q", url)
	}
}

func TestS3UploadError(t *testing.T) {
	fp := &fakePutter{err: context.DeadlineExceeded}
	u := &S3Uploader{client: fp, cfg: S3Config{Bucket: "b", Prefix: "p/"}, now: fixedNow}
	if _, err := u.Upload(context.Background(), []byte("x"), "image/png"); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewS3UploaderRequiresBucket(t *testing.T) {
	if _, err := NewS3Uploader(context.Background(), S3Config{}); err == nil {
		t.Fatal("expected error for missing bucket")
	}
}
