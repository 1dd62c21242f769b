// Package archive stores finished run reports in S3 for audit. Archival
// is best-effort: a failed upload is logged by the caller and never
// fails the run.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/ignite/bookmark-sync/internal/importer"
)

// s3API is the slice of the S3 client the archiver uses.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Config configures the run-report archiver.
type S3Config struct {
	Bucket string
	Prefix string // e.g. "bookmark-sync/runs/"
	Region string
}

// S3Archiver writes run reports as JSON objects under a per-user prefix.
type S3Archiver struct {
	client s3API
	bucket string
	prefix string
}

// NewS3Archiver creates an archiver using the default AWS credential
// chain.
func NewS3Archiver(ctx context.Context, cfg S3Config) (*S3Archiver, error) {
	region := cfg.Region
	if region == "" {
		region = os.Getenv("AWS_REGION")
		if region == "" {
			region = "us-east-1"
		}
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	return &S3Archiver{
		client: s3.NewFromConfig(awsCfg),
		bucket: cfg.Bucket,
		prefix: normalizePrefix(cfg.Prefix),
	}, nil
}

func normalizePrefix(p string) string {
	if p == "" {
		return ""
	}
	return strings.TrimSuffix(p, "/") + "/"
}

// ArchiveRunReport uploads one run's result. The key embeds the finish
// time so reports list in chronological order per user.
func (a *S3Archiver) ArchiveRunReport(ctx context.Context, userID string, result importer.Result) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize run report: %w", err)
	}

	key := a.reportKey(userID, result)
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
		Metadata: map[string]string{
			"run_id":  result.RunID,
			"user_id": userID,
		},
	})
	if err != nil {
		return fmt.Errorf("upload run report: %w", err)
	}
	return nil
}

func (a *S3Archiver) reportKey(userID string, result importer.Result) string {
	return fmt.Sprintf("%s%s/%s-%s.json",
		a.prefix, userID, result.FinishedAt.UTC().Format("2006/01/02/15-04-05"), result.RunID)
}

// ListRunReports returns the report keys stored for a user.
func (a *S3Archiver) ListRunReports(ctx context.Context, userID string) ([]string, error) {
	prefix := a.prefix + userID + "/"

	var keys []string
	var token *string
	for {
		page, err := a.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(a.bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("list run reports: %w", err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
		if page.NextContinuationToken == nil {
			break
		}
		token = page.NextContinuationToken
	}
	return keys, nil
}
