package storage

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	objects     map[string][]byte
	contentType map[string]string
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, contentType: map[string]string{}}
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = body
	f.contentType[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	body, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(body))}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3StoragePrefixesKeys(t *testing.T) {
	client := newFakeS3()
	store := newS3Storage(client, "bucket", "/ledger-exports/")
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "2024/a.xlsx", []byte("xlsx"), "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"))
	assert.Contains(t, client.objects, "ledger-exports/2024/a.xlsx")
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", client.contentType["ledger-exports/2024/a.xlsx"])

	rc, err := store.Open(ctx, "2024/a.xlsx")
	require.NoError(t, err)
	body, _ := io.ReadAll(rc)
	assert.Equal(t, "xlsx", string(body))

	require.NoError(t, store.Delete(ctx, "2024/a.xlsx"))
	_, err = store.Open(ctx, "2024/a.xlsx")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}
