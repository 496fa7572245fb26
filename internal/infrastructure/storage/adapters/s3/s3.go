package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/pwrtux/moodle-magnet/internal/config"
	"github.com/pwrtux/moodle-magnet/internal/domain/observability"
	"github.com/pwrtux/moodle-magnet/internal/domain/storage"
)

// Store implements storage.FileStore on an S3 bucket. Relative paths map
// directly to object keys, so the bucket mirrors the local directory layout.
type Store struct {
	client  *s3.Client
	bucket  string
	logger  observability.Logger
	metrics observability.Metrics
}

// New creates an S3-backed FileStore for the given bucket
func New(cfg *config.Config, bucket string, logger observability.Logger, metrics observability.Metrics) (storage.FileStore, error) {
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	awsCfg, err := buildAWSConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
		if cfg.Storage.S3.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.S3.Endpoint)
		}
	})

	s := &Store{
		client:  client,
		bucket:  bucket,
		logger:  logger.WithFields(map[string]interface{}{"component": "s3_store"}),
		metrics: metrics.WithTags(map[string]string{"storage": "s3"}),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.ensureBucketExists(ctx); err != nil {
		logger.Error("Failed to verify bucket existence", "error", err, "bucket", bucket)
		return nil, fmt.Errorf("failed to verify bucket existence: %w", err)
	}

	logger.Info("S3 store initialized", "bucket", bucket, "region", cfg.Storage.S3.Region)
	return s, nil
}

// Save uploads the reader's content as a single object. S3 puts are atomic,
// so a failed upload never leaves a partial object behind.
func (s *Store) Save(ctx context.Context, key string, reader io.Reader) (int64, error) {
	start := time.Now()
	s.metrics.IncrementCounter("storage.save.attempts", nil)

	// Buffer the content so the SDK knows the object size up front
	buf := &bytes.Buffer{}
	bytesRead, err := io.Copy(buf, reader)
	if err != nil {
		s.logger.Error("Failed to read content", "error", err, "key", key)
		s.metrics.IncrementCounter("storage.save.errors", map[string]string{"error": "read"})
		return 0, fmt.Errorf("failed to read content: %w", err)
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(buf.Bytes()),
	}
	if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
		input.ContentType = aws.String(ct)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		s.logger.Error("Failed to put object", "error", err, "key", key)
		s.metrics.IncrementCounter("storage.save.errors", map[string]string{"error": "s3"})
		return 0, fmt.Errorf("failed to put object: %w", err)
	}

	duration := time.Since(start)
	s.logger.Info("Object stored",
		"key", key,
		"bytes", bytesRead,
		"duration_ms", duration.Milliseconds())

	s.metrics.IncrementCounter("storage.save.success", nil)
	s.metrics.RecordHistogram("storage.save.bytes", float64(bytesRead), nil)
	s.metrics.RecordHistogram("storage.save.duration_ms", float64(duration.Milliseconds()), nil)

	return bytesRead, nil
}

// Open streams back an object's content
func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		s.logger.Error("Failed to get object", "error", err, "key", key)
		return nil, fmt.Errorf("failed to get object: %w", err)
	}

	return result.Body, nil
}

// Exists checks if an object exists at the given key
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFoundError(err) {
			return false, nil
		}
		s.logger.Error("Failed to check object existence", "error", err, "key", key)
		return false, fmt.Errorf("failed to check object existence: %w", err)
	}
	return true, nil
}

// Delete removes an object
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		s.logger.Error("Failed to delete object", "error", err, "key", key)
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// List returns the objects under the given key prefix
func (s *Store) List(ctx context.Context, prefix string) ([]storage.FileInfo, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
	}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}

	var files []storage.FileInfo
	paginator := s3.NewListObjectsV2Paginator(s.client, input)

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			s.logger.Error("Failed to list objects", "error", err, "prefix", prefix)
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}

		for _, obj := range page.Contents {
			files = append(files, storage.FileInfo{
				Path:    aws.ToString(obj.Key),
				Size:    aws.ToInt64(obj.Size),
				ModTime: aws.ToTime(obj.LastModified),
			})
		}
	}

	return files, nil
}

// ensureBucketExists checks the configured bucket, creating it when missing
func (s *Store) ensureBucketExists(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err == nil {
		return nil
	}

	var nf *s3types.NotFound
	if !errors.As(err, &nf) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	s.logger.Info("Bucket does not exist, attempting to create", "bucket", s.bucket)

	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		var bae *s3types.BucketAlreadyExists
		var baoyb *s3types.BucketAlreadyOwnedByYou
		if errors.As(err, &bae) || errors.As(err, &baoyb) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}

	return nil
}

// buildAWSConfig builds the AWS configuration from storage settings
func buildAWSConfig(cfg *config.Config) (aws.Config, error) {
	var optFns []func(*awsconfig.LoadOptions) error
	s3Cfg := cfg.Storage.S3

	if s3Cfg.Region != "" {
		optFns = append(optFns, awsconfig.WithRegion(s3Cfg.Region))
	}

	if s3Cfg.AccessKeyID != "" && s3Cfg.SecretAccessKey != "" {
		optFns = append(optFns, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				s3Cfg.AccessKeyID,
				s3Cfg.SecretAccessKey,
				"",
			),
		))
	}

	optFns = append(optFns, awsconfig.WithRetryMaxAttempts(cfg.Storage.MaxRetries))
	optFns = append(optFns, awsconfig.WithHTTPClient(&http.Client{
		Timeout: cfg.Storage.Timeout,
	}))

	return awsconfig.LoadDefaultConfig(context.Background(), optFns...)
}

// isNotFoundError checks if an error is a not found error
func isNotFoundError(err error) bool {
	var nsk *s3types.NoSuchKey
	var nf *s3types.NotFound
	return errors.As(err, &nsk) || errors.As(err, &nf)
}
