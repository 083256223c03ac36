package objectstore

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type putObjectStub struct {
	input *s3.PutObjectInput
	body  string
	err   error
}

func (p *putObjectStub) PutObject(ctx context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	p.input = params
	data, _ := io.ReadAll(params.Body)
	p.body = string(data)
	return &s3.PutObjectOutput{}, p.err
}

func TestS3StorageUpload(t *testing.T) {
	stub := &putObjectStub{}
	store := &S3Storage{client: stub, bucket: "coliseum", baseURL: "https://cdn.example.com"}

	err := store.Upload(context.Background(), "/thumbnails/v1.jpg", strings.NewReader("jpeg-bytes"), "image/jpeg")
	require.NoError(t, err)

	assert.Equal(t, "coliseum", aws.ToString(stub.input.Bucket))
	assert.Equal(t, "thumbnails/v1.jpg", aws.ToString(stub.input.Key))
	assert.Equal(t, "image/jpeg", aws.ToString(stub.input.ContentType))
	assert.Equal(t, "jpeg-bytes", stub.body)
	assert.Equal(t, "https://cdn.example.com/thumbnails/v1.jpg", store.PublicURL("thumbnails/v1.jpg"))
}

func TestS3StorageUploadErrors(t *testing.T) {
	store := &S3Storage{client: &putObjectStub{}, bucket: "coliseum"}
	assert.Error(t, store.Upload(context.Background(), "/", strings.NewReader("x"), "image/jpeg"))

	store = &S3Storage{client: &putObjectStub{err: errors.New("denied")}, bucket: "coliseum"}
	assert.Error(t, store.Upload(context.Background(), "a.jpg", strings.NewReader("x"), "image/jpeg"))
}

func TestNewS3StorageRequiresBucket(t *testing.T) {
	_, err := NewS3Storage(context.Background(), S3Config{Endpoint: "https://r2.example.com"})
	assert.Error(t, err)
}
