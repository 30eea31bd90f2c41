package checks

import (
	"context"
	"testing"

	"transit-catalog/core/storage"
	"transit-catalog/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

var testStorage = storage.Config{Bucket: "gtfs", IncomingPrefix: "incoming", ArchivePrefix: "archive/"}

func objects(keys ...string) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo, len(keys))
	for _, k := range keys {
		ch <- minio.ObjectInfo{Key: k}
	}
	close(ch)
	return ch
}

func byPrefix(prefix string) any {
	return mock.MatchedBy(func(opts minio.ListObjectsOptions) bool {
		return opts.Prefix == prefix
	})
}

func TestRequiredFolders(t *testing.T) {
	assert.Equal(t, []string{"incoming/", "archive/"}, RequiredFolders(testStorage))
}

func TestCheckStructure(t *testing.T) {
	t.Run("Bucket Missing", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "gtfs").Return(false, nil)

		_, err := CheckStructure(context.Background(), mockClient, testStorage)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "does not exist")
	})

	t.Run("Bucket Error", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "gtfs").Return(false, assert.AnError)

		_, err := CheckStructure(context.Background(), mockClient, testStorage)
		assert.ErrorIs(t, err, assert.AnError)
	})

	t.Run("All Missing", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "gtfs").Return(true, nil)
		mockClient.On("ListObjects", mock.Anything, "gtfs", mock.Anything).Return(objects())

		missing, err := CheckStructure(context.Background(), mockClient, testStorage)
		assert.NoError(t, err)
		assert.Equal(t, []string{"incoming/", "archive/"}, missing)
	})

	t.Run("Archive Missing", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "gtfs").Return(true, nil)
		mockClient.On("ListObjects", mock.Anything, "gtfs", byPrefix("incoming/")).Return(objects("incoming/"))
		mockClient.On("ListObjects", mock.Anything, "gtfs", byPrefix("archive/")).Return(objects())

		missing, err := CheckStructure(context.Background(), mockClient, testStorage)
		assert.NoError(t, err)
		assert.Equal(t, []string{"archive/"}, missing)
	})

	t.Run("Listing Cancelled After First Object", func(t *testing.T) {
		var listings []context.Context
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "gtfs").Return(true, nil)
		mockClient.On("ListObjects", mock.Anything, "gtfs", mock.Anything).
			Run(func(args mock.Arguments) {
				listings = append(listings, args.Get(0).(context.Context))
			}).
			Return(objects("marker-1", "marker-2"))

		missing, err := CheckStructure(context.Background(), mockClient, testStorage)
		assert.NoError(t, err)
		assert.Empty(t, missing)
		assert.Len(t, listings, 2)
		for _, listCtx := range listings {
			assert.ErrorIs(t, listCtx.Err(), context.Canceled)
		}
	})
}

func TestFixStructure(t *testing.T) {
	mockClient := new(mocks.Client)
	mockClient.On("PutObject", mock.Anything, "gtfs", "archive/", mock.Anything, int64(0), mock.Anything).Return(minio.UploadInfo{}, nil)

	err := FixStructure(context.Background(), mockClient, "gtfs", zap.NewNop(), []string{"archive"})
	assert.NoError(t, err)
	mockClient.AssertNumberOfCalls(t, "PutObject", 1)
}

func TestFixStructure_Error(t *testing.T) {
	mockClient := new(mocks.Client)
	mockClient.On("PutObject", mock.Anything, "gtfs", mock.Anything, mock.Anything, int64(0), mock.Anything).Return(minio.UploadInfo{}, assert.AnError)

	err := FixStructure(context.Background(), mockClient, "gtfs", zap.NewNop(), []string{"incoming/", "archive/"})
	assert.ErrorIs(t, err, assert.AnError)
	mockClient.AssertNumberOfCalls(t, "PutObject", 1)
}

func TestCheckPending(t *testing.T) {
	mockClient := new(mocks.Client)
	mockClient.On("BucketExists", mock.Anything, "gtfs").Return(true, nil)
	mockClient.On("ListObjects", mock.Anything, "gtfs", byPrefix("archive/")).
		Return(objects("archive/", "archive/2024/gtfs_0101.zip"))
	mockClient.On("ListObjects", mock.Anything, "gtfs", byPrefix("incoming/")).
		Return(objects("incoming/", "incoming/gtfs_0101.zip", "incoming/gtfs_0201.ZIP", "incoming/notes.txt"))

	pending, err := CheckPending(context.Background(), mockClient, testStorage)
	assert.NoError(t, err)
	assert.Equal(t, []string{"incoming/gtfs_0201.ZIP"}, pending)
}

func TestCheckPending_ListError(t *testing.T) {
	mockClient := new(mocks.Client)
	mockClient.On("BucketExists", mock.Anything, "gtfs").Return(true, nil)

	ch := make(chan minio.ObjectInfo, 1)
	ch <- minio.ObjectInfo{Err: assert.AnError}
	close(ch)
	mockClient.On("ListObjects", mock.Anything, "gtfs", byPrefix("archive/")).Return((<-chan minio.ObjectInfo)(ch))

	_, err := CheckPending(context.Background(), mockClient, testStorage)
	assert.ErrorIs(t, err, assert.AnError)
}
