package backend

import (
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

type S3Backend struct {
	bucket     string
	maxRetries int
	retryDelay time.Duration
	svc        s3iface.S3API
}

func NewS3Backend(bucket string, maxRetries int, svc s3iface.S3API) *S3Backend {
	return &S3Backend{
		bucket:     bucket,
		maxRetries: maxRetries,
		retryDelay: time.Second,
		svc:        svc,
	}
}

// Open streams the object at key. The body is read as it's consumed, so large
// tables are never held in memory.
func (s *S3Backend) Open(key string) (io.ReadCloser, error) {
	params := &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}
	resp, err := s.svc.GetObject(params)

	// If the download failed, retry maxRetries number of times with an
	// exponential backoff.
	backoff := s.retryDelay
	for i := 0; i < s.maxRetries && err != nil; i++ {
		time.Sleep(backoff)
		resp, err = s.svc.GetObject(params)
		backoff *= 2
	}

	if err != nil {
		return nil, fmt.Errorf("error opening S3 path %s: %s", s.DisplayPath(key), err)
	}

	return resp.Body, nil
}

func (s *S3Backend) DisplayPath(key string) string {
	return fmt.Sprintf("s3://%s/%s", s.bucket, key)
}
