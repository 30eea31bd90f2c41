package checks

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"transit-catalog/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// RequiredFolders lists the snapshot bucket prefixes an import depends on.
func RequiredFolders(cfg storage.Config) []string {
	return []string{folder(cfg.IncomingPrefix), folder(cfg.ArchivePrefix)}
}

func folder(prefix string) string {
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix
}

func ensureBucket(ctx context.Context, client storage.Client, bucket string) error {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		return fmt.Errorf("bucket %s does not exist", bucket)
	}
	return nil
}

// CheckStructure returns a list of missing folders.
func CheckStructure(ctx context.Context, client storage.Client, cfg storage.Config) ([]string, error) {
	if err := ensureBucket(ctx, client, cfg.Bucket); err != nil {
		return nil, err
	}

	var missing []string
	for _, prefix := range RequiredFolders(cfg) {
		if !hasObject(ctx, client, cfg.Bucket, prefix) {
			missing = append(missing, prefix)
		}
	}
	return missing, nil
}

// hasObject reports whether anything exists under prefix. The listing is
// cancelled once the first object arrives so its goroutine can exit.
func hasObject(ctx context.Context, client storage.Client, bucket, prefix string) bool {
	listCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	opts := minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: false,
		MaxKeys:   1,
	}
	for range client.ListObjects(listCtx, bucket, opts) {
		return true
	}
	return false
}

// FixStructure creates the missing folders as empty marker objects.
func FixStructure(ctx context.Context, client storage.Client, bucket string, logger *zap.Logger, missing []string) error {
	for _, prefix := range missing {
		_, err := client.PutObject(ctx, bucket, folder(prefix), bytes.NewReader([]byte{}), 0, minio.PutObjectOptions{})
		if err != nil {
			logger.Error("Failed to create folder", zap.String("folder", prefix), zap.Error(err))
			return err
		}
		logger.Info("Created missing folder", zap.String("folder", prefix))
	}
	return nil
}

// CheckPending lists archives waiting under the incoming prefix that have no
// copy under the archive prefix yet.
func CheckPending(ctx context.Context, client storage.Client, cfg storage.Config) ([]string, error) {
	if err := ensureBucket(ctx, client, cfg.Bucket); err != nil {
		return nil, err
	}

	archived := make(map[string]bool)
	for obj := range client.ListObjects(ctx, cfg.Bucket, minio.ListObjectsOptions{Prefix: folder(cfg.ArchivePrefix), Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list archived snapshots: %w", obj.Err)
		}
		archived[path.Base(obj.Key)] = true
	}

	pending := []string{}
	for obj := range client.ListObjects(ctx, cfg.Bucket, minio.ListObjectsOptions{Prefix: folder(cfg.IncomingPrefix), Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list incoming snapshots: %w", obj.Err)
		}
		if !strings.HasSuffix(strings.ToLower(obj.Key), ".zip") {
			continue
		}
		if !archived[path.Base(obj.Key)] {
			pending = append(pending, obj.Key)
		}
	}
	return pending, nil
}
