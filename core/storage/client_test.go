package storage_test

import (
	"context"
	"errors"
	"testing"

	"rewrite-manager/core/storage"
	"rewrite-manager/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestNewClient(t *testing.T) {
	t.Run("ValidConfig", func(t *testing.T) {
		client, err := storage.NewClient(storage.Config{
			Endpoint:  "localhost:9000",
			AccessKey: "testkey",
			SecretKey: "testsecret",
			Bucket:    "test-bucket",
			Region:    "us-east-1",
		})
		assert.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("EndpointWithHTTPS", func(t *testing.T) {
		client, err := storage.NewClient(storage.Config{
			Endpoint:  "https://s3.amazonaws.com",
			AccessKey: "testkey",
			SecretKey: "testsecret",
			UseSSL:    true,
		})
		assert.NoError(t, err)
		assert.NotNil(t, client)
	})
}

func TestPutReport(t *testing.T) {
	ctx := context.Background()
	data := []byte(`{"entities_found":3}`)

	t.Run("ExistingBucket", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", ctx, "reports").Return(true, nil)
		client.On("PutObject", ctx, "reports", "runs/report.json", mock.Anything, int64(len(data)), mock.Anything).
			Return(minio.UploadInfo{}, nil)

		key, err := storage.PutReport(ctx, client, "reports", "runs", "report.json", data)
		assert.NoError(t, err)
		assert.Equal(t, "runs/report.json", key)
		client.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
		client.AssertExpectations(t)
	})

	t.Run("CreatesBucket", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", ctx, "reports").Return(false, nil)
		client.On("MakeBucket", ctx, "reports", minio.MakeBucketOptions{}).Return(nil)
		client.On("PutObject", ctx, "reports", "report.json", mock.Anything, int64(len(data)), mock.Anything).
			Return(minio.UploadInfo{}, nil)

		_, err := storage.PutReport(ctx, client, "reports", "", "report.json", data)
		assert.NoError(t, err)
		client.AssertExpectations(t)
	})

	t.Run("UploadFails", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", ctx, "reports").Return(true, nil)
		client.On("PutObject", ctx, "reports", "report.json", mock.Anything, mock.Anything, mock.Anything).
			Return(minio.UploadInfo{}, errors.New("denied"))

		_, err := storage.PutReport(ctx, client, "reports", "", "report.json", data)
		assert.ErrorContains(t, err, "denied")
	})
}
