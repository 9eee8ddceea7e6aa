package storage

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Service talks to Amazon S3 (or compatible APIs).
type S3Service struct {
	client   *s3.Client
	uploader *manager.Uploader
}

func NewS3Service(client *s3.Client) *S3Service {
	return &S3Service{
		client:   client,
		uploader: manager.NewUploader(client),
	}
}

func (s *S3Service) UploadFile(ctx context.Context, localPath, bucket, key string) (string, error) {
	if bucket == "" {
		return "", fmt.Errorf("storage bucket is required")
	}
	key = strings.TrimPrefix(key, "/")
	if key == "" {
		return "", fmt.Errorf("object key is required")
	}

	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open file %s: %w", localPath, err)
	}
	defer f.Close()

	_, err = s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   f,
		ACL:    types.ObjectCannedACLPrivate,
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", localPath, err)
	}
	return fmt.Sprintf("s3://%s/%s", bucket, key), nil
}

func (s *S3Service) ListObjects(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error) {
	if bucket == "" {
		return nil, fmt.Errorf("storage bucket is required")
	}

	var objects []ObjectInfo
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
	}
	if strings.TrimSpace(prefix) != "" {
		input.Prefix = aws.String(prefix)
	}

	for {
		output, err := s.client.ListObjectsV2(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("list objects: %w", err)
		}

		for _, obj := range output.Contents {
			objects = append(objects, ObjectInfo{
				Key:          aws.ToString(obj.Key),
				Size:         aws.ToInt64(obj.Size),
				LastModified: obj.LastModified,
			})
		}

		if !aws.ToBool(output.IsTruncated) || output.NextContinuationToken == nil {
			break
		}
		input.ContinuationToken = output.NextContinuationToken
	}

	return objects, nil
}

// DeleteObjects removes keys in batches of 1000, the S3 per-request limit.
func (s *S3Service) DeleteObjects(ctx context.Context, bucket string, keys []string) error {
	if bucket == "" {
		return fmt.Errorf("storage bucket is required")
	}

	const batch = 1000
	for start := 0; start < len(keys); start += batch {
		end := min(start+batch, len(keys))
		identifiers := make([]types.ObjectIdentifier, 0, end-start)
		for _, key := range keys[start:end] {
			identifiers = append(identifiers, types.ObjectIdentifier{Key: aws.String(key)})
		}
		out, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(bucket),
			Delete: &types.Delete{
				Objects: identifiers,
				Quiet:   aws.Bool(true),
			},
		})
		if err != nil {
			return fmt.Errorf("delete objects: %w", err)
		}
		if err := deleteErrors(out.Errors); err != nil {
			return err
		}
	}
	return nil
}

// deleteErrors turns the per-key failures of a quiet delete into an error.
func deleteErrors(failed []types.Error) error {
	if len(failed) == 0 {
		return nil
	}
	first := failed[0]
	return fmt.Errorf("delete objects: %d of the keys failed, first %s: %s %s",
		len(failed), aws.ToString(first.Key), aws.ToString(first.Code), aws.ToString(first.Message))
}

var _ Service = (*S3Service)(nil)
