package storage_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"transit-catalog/core/storage"
	"transit-catalog/core/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestNewClient(t *testing.T) {
	t.Run("ValidConfig", func(t *testing.T) {
		cfg := storage.Config{
			Endpoint:  "localhost:9000",
			AccessKey: "testkey",
			SecretKey: "testsecret",
			UseSSL:    false,
			Bucket:    "gtfs",
			Region:    "us-east-1",
		}

		client, err := storage.NewClient(cfg)
		assert.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("EndpointWithHTTP", func(t *testing.T) {
		cfg := storage.Config{
			Endpoint:  "http://localhost:9000",
			AccessKey: "testkey",
			SecretKey: "testsecret",
		}

		client, err := storage.NewClient(cfg)
		assert.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("EndpointWithHTTPS", func(t *testing.T) {
		cfg := storage.Config{
			Endpoint:  "https://s3.amazonaws.com",
			AccessKey: "testkey",
			SecretKey: "testsecret",
			UseSSL:    true,
			Region:    "us-east-1",
		}

		client, err := storage.NewClient(cfg)
		assert.NoError(t, err)
		assert.NotNil(t, client)
	})
}

func TestDownload(t *testing.T) {
	t.Run("CopiesObject", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("GetObject", mock.Anything, "gtfs", "incoming/a.zip", mock.Anything).
			Return(io.NopCloser(strings.NewReader("zipbytes")), nil)

		var buf bytes.Buffer
		n, err := storage.Download(context.Background(), client, "gtfs", "incoming/a.zip", &buf)
		assert.NoError(t, err)
		assert.Equal(t, int64(8), n)
		assert.Equal(t, "zipbytes", buf.String())
	})

	t.Run("GetError", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("GetObject", mock.Anything, "gtfs", "missing.zip", mock.Anything).
			Return(nil, errors.New("no such key"))

		_, err := storage.Download(context.Background(), client, "gtfs", "missing.zip", io.Discard)
		assert.ErrorContains(t, err, "no such key")
	})
}
