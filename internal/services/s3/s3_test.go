package s3service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	objects map[string]string
	copies  []string
	deletes []string
	copyErr error
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	body, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func (f *fakeS3) CopyObject(_ context.Context, in *s3.CopyObjectInput, _ ...func(*s3.Options)) (*s3.CopyObjectOutput, error) {
	if f.copyErr != nil {
		return nil, f.copyErr
	}
	f.copies = append(f.copies, aws.ToString(in.CopySource)+" -> "+aws.ToString(in.Key))
	return &s3.CopyObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deletes = append(f.deletes, aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestDownloadFile(t *testing.T) {
	fake := &fakeS3{objects: map[string]string{
		"catalog/universities.csv": "id,name_en\nmit,MIT",
		"catalog/empty.csv":        "",
	}}
	svc := NewServiceWithClient(fake, "catalog")

	content, err := svc.DownloadFile(context.Background(), "", "universities.csv")
	require.NoError(t, err)
	assert.Equal(t, "id,name_en\nmit,MIT", content)

	_, err = svc.DownloadFile(context.Background(), "catalog", "empty.csv")
	assert.Error(t, err)

	_, err = svc.DownloadFile(context.Background(), "catalog", "missing.csv")
	assert.Error(t, err)
}

func TestArchiveFile(t *testing.T) {
	fake := &fakeS3{}
	svc := NewServiceWithClient(fake, "catalog")

	archived, err := svc.ArchiveFile(context.Background(), "uploads", "2025/universities.csv")
	require.NoError(t, err)
	assert.Equal(t, "processed/2025/universities.csv", archived)
	assert.Equal(t, []string{"uploads/2025/universities.csv -> processed/2025/universities.csv"}, fake.copies)
	assert.Equal(t, []string{"uploads/2025/universities.csv"}, fake.deletes)
}

func TestArchiveFile_AlreadyArchived(t *testing.T) {
	fake := &fakeS3{}
	svc := NewServiceWithClient(fake, "catalog")

	archived, err := svc.ArchiveFile(context.Background(), "", "processed/universities.csv")
	require.NoError(t, err)
	assert.Equal(t, "processed/universities.csv", archived)
	assert.Empty(t, fake.copies)
}

func TestArchiveFile_CopyFailureKeepsOriginal(t *testing.T) {
	fake := &fakeS3{copyErr: errors.New("access denied")}
	svc := NewServiceWithClient(fake, "catalog")

	_, err := svc.ArchiveFile(context.Background(), "", "universities.csv")
	assert.Error(t, err)
	assert.Empty(t, fake.deletes)
}

type fakePresigner struct {
	input *s3.PutObjectInput
}

func (f *fakePresigner) PresignPutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	f.input = in
	return &v4.PresignedHTTPRequest{URL: "https://example.test/" + aws.ToString(in.Key), Method: "PUT"}, nil
}

func TestPresignUpload(t *testing.T) {
	presigner := &fakePresigner{}
	svc := NewServiceWithClient(&fakeS3{}, "catalog").WithPresigner(presigner)

	url, err := svc.PresignUpload(context.Background(), "uploads/2025/01/01/list.csv", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "https://example.test/uploads/2025/01/01/list.csv", url)
	assert.Equal(t, "catalog", aws.ToString(presigner.input.Bucket))
	assert.Equal(t, "text/csv", aws.ToString(presigner.input.ContentType))
}

func TestPresignUpload_NotConfigured(t *testing.T) {
	_, err := NewServiceWithClient(&fakeS3{}, "catalog").PresignUpload(context.Background(), "k.csv", time.Minute)
	assert.Error(t, err)
}
