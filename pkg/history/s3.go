package history

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/vango-dev/stacknav/internal/errors"
)

// S3API is the subset of *s3.Client used by S3Snapshotter.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Snapshotter stores snapshots as a single JSON object in S3.
//
// Example usage:
//
//	client := s3.New(s3.Options{
//	    Region:      "us-east-1",
//	    Credentials: aws.NewCredentialsCache(provider),
//	})
//	snap := history.NewS3Snapshotter(client, "my-bucket", "stacknav/session.json")
//	cancel := history.Autosave(ctx, store, snap, logger)
type S3Snapshotter struct {
	client S3API
	bucket string
	key    string
}

// NewS3Snapshotter creates a snapshotter writing to bucket/key.
func NewS3Snapshotter(client S3API, bucket, key string) *S3Snapshotter {
	return &S3Snapshotter{client: client, bucket: bucket, key: key}
}

// Save implements Snapshotter.
func (s *S3Snapshotter) Save(ctx context.Context, snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return errors.New("S001").WithDetail("encode").Wrap(err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
		Metadata: map[string]string{
			"entries":    fmt.Sprint(len(snap.Entries)),
			"saved-time": time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return errors.New("S001").WithDetailf("put s3://%s/%s", s.bucket, s.key).Wrap(err)
	}
	return nil
}

// Load implements Snapshotter. A missing object is not an error.
func (s *S3Snapshotter) Load(ctx context.Context) (Snapshot, bool, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if stderrors.As(err, &noKey) {
			return Snapshot{}, false, nil
		}
		return Snapshot{}, false, errors.New("S001").WithDetailf("get s3://%s/%s", s.bucket, s.key).Wrap(err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return Snapshot{}, false, errors.New("S001").WithDetail("read body").Wrap(err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, false, errors.New("S001").WithDetail("decode").Wrap(err)
	}
	return snap, true, nil
}
