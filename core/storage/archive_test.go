package storage_test

import (
	"context"
	"errors"
	"testing"

	"rackops/core/storage"
	"rackops/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var archiveCfg = storage.Config{Bucket: "reports", Region: "eu-west-1"}

func TestArchive_ExistingBucket(t *testing.T) {
	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "reports").Return(true, nil)
	client.On("PutObject", mock.Anything, "reports", "reports/interfaces/run.json", mock.Anything, int64(2),
		mock.MatchedBy(func(o minio.PutObjectOptions) bool { return o.ContentType == "application/json" })).
		Return(minio.UploadInfo{Key: "reports/interfaces/run.json", Size: 2}, nil)

	info, err := storage.Archive(context.Background(), client, archiveCfg, "reports/interfaces/run.json", []byte("{}"), "application/json")
	require.NoError(t, err)
	assert.Equal(t, int64(2), info.Size)
	client.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
	client.AssertExpectations(t)
}

func TestArchive_CreatesBucket(t *testing.T) {
	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "reports").Return(false, nil)
	client.On("MakeBucket", mock.Anything, "reports", minio.MakeBucketOptions{Region: "eu-west-1"}).Return(nil)
	client.On("PutObject", mock.Anything, "reports", "r.json", mock.Anything, int64(2), mock.Anything).
		Return(minio.UploadInfo{Key: "r.json"}, nil)

	_, err := storage.Archive(context.Background(), client, archiveCfg, "r.json", []byte("{}"), "application/json")
	require.NoError(t, err)
	client.AssertExpectations(t)
}

func TestArchive_Errors(t *testing.T) {
	t.Run("BucketCheck", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "reports").Return(false, errors.New("access denied"))

		_, err := storage.Archive(context.Background(), client, archiveCfg, "r.json", nil, "")
		assert.ErrorContains(t, err, "access denied")
	})

	t.Run("MakeBucket", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "reports").Return(false, nil)
		client.On("MakeBucket", mock.Anything, "reports", mock.Anything).Return(errors.New("quota"))

		_, err := storage.Archive(context.Background(), client, archiveCfg, "r.json", nil, "")
		assert.ErrorContains(t, err, "failed to create bucket")
	})

	t.Run("Upload", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "reports").Return(true, nil)
		client.On("PutObject", mock.Anything, "reports", "r.json", mock.Anything, int64(0), mock.Anything).
			Return(minio.UploadInfo{}, errors.New("timeout"))

		_, err := storage.Archive(context.Background(), client, archiveCfg, "r.json", nil, "")
		assert.ErrorContains(t, err, "failed to upload r.json")
	})
}

func TestNewClient_Endpoint(t *testing.T) {
	tests := []struct {
		name   string
		cfg    storage.Config
		host   string
		scheme string
	}{
		{"Bare", storage.Config{Endpoint: "minio.internal:9000", Bucket: "rackops-reports"}, "minio.internal:9000", "http"},
		{"SchemeStripped", storage.Config{Endpoint: "http://minio.internal:9000", Bucket: "rackops-reports"}, "minio.internal:9000", "http"},
		{"TLS", storage.Config{Endpoint: "https://s3.amazonaws.com", UseSSL: true, Region: "us-east-1", Bucket: "rackops-reports"}, "s3.amazonaws.com", "https"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := storage.NewClient(tt.cfg)
			require.NoError(t, err)

			mc, ok := client.(*minio.Client)
			require.True(t, ok)
			assert.Equal(t, tt.host, mc.EndpointURL().Host)
			assert.Equal(t, tt.scheme, mc.EndpointURL().Scheme)
		})
	}
}
