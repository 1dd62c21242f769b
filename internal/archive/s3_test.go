package archive

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/bookmark-sync/internal/importer"
)

type fakeS3 struct {
	puts  []*s3.PutObjectInput
	pages []*s3.ListObjectsV2Output
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.puts = append(f.puts, in)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, _ *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	page := f.pages[0]
	f.pages = f.pages[1:]
	return page, nil
}

func TestArchiveRunReportKeyAndBody(t *testing.T) {
	fake := &fakeS3{}
	a := &S3Archiver{client: fake, bucket: "reports", prefix: "bookmark-sync/runs/"}

	finished := time.Date(2026, 3, 14, 9, 30, 5, 0, time.UTC)
	result := importer.Result{
		RunID:      "run-42",
		Collected:  10,
		Persisted:  8,
		FinishedAt: finished,
	}
	require.NoError(t, a.ArchiveRunReport(context.Background(), "user-1", result))

	require.Len(t, fake.puts, 1)
	put := fake.puts[0]
	assert.Equal(t, "reports", aws.ToString(put.Bucket))
	assert.Equal(t, "bookmark-sync/runs/user-1/2026/03/14/09-30-05-run-42.json", aws.ToString(put.Key))
	assert.Equal(t, "application/json", aws.ToString(put.ContentType))

	body, err := io.ReadAll(put.Body)
	require.NoError(t, err)
	var got importer.Result
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "run-42", got.RunID)
	assert.Equal(t, 8, got.Persisted)
}

func TestListRunReportsPaginates(t *testing.T) {
	fake := &fakeS3{pages: []*s3.ListObjectsV2Output{
		{
			Contents:              []types.Object{{Key: aws.String("runs/u/1.json")}},
			NextContinuationToken: aws.String("next"),
		},
		{
			Contents: []types.Object{{Key: aws.String("runs/u/2.json")}},
		},
	}}
	a := &S3Archiver{client: fake, bucket: "reports", prefix: "runs/"}

	keys, err := a.ListRunReports(context.Background(), "u")
	require.NoError(t, err)
	assert.Equal(t, []string{"runs/u/1.json", "runs/u/2.json"}, keys)
}

func TestNormalizePrefix(t *testing.T) {
	assert.Equal(t, "", normalizePrefix(""))
	assert.Equal(t, "a/", normalizePrefix("a"))
	assert.Equal(t, "a/", normalizePrefix("a/"))
}
