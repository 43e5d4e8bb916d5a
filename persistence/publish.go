package persistence

import (
	"context"
	"fmt"
	"io"

	"github.com/CowSmiles/tantivy/blobstore"
)

// CurrentBlobName is the pointer blob naming the live published prefix.
// Commit-aware stores treat it specially: the S3 DynamoDB commit store turns
// the Put into a conditional version bump, so concurrent publishers cannot
// both win.
const CurrentBlobName = "CURRENT"

// PublishDir uploads a directory under the given prefix and then flips the
// CURRENT pointer to it. Readers that resolve the pointer before opening
// files never observe a half-uploaded generation: the pointer only moves
// after every file landed.
func PublishDir(ctx context.Context, store blobstore.BlobStore, dir, prefix string, optFns ...func(*UploadOptions)) error {
	if err := UploadDir(ctx, store, dir, prefix, optFns...); err != nil {
		return err
	}
	if err := store.Put(ctx, CurrentBlobName, []byte(prefix)); err != nil {
		return fmt.Errorf("persistence: publish %s: %w", prefix, err)
	}
	return nil
}

// CurrentPrefix resolves the CURRENT pointer to the live prefix. Returns
// blobstore.ErrNotFound when nothing has been published yet.
func CurrentPrefix(ctx context.Context, store blobstore.BlobStore) (string, error) {
	blob, err := store.Open(ctx, CurrentBlobName)
	if err != nil {
		return "", err
	}
	defer blob.Close()

	rc, err := blob.ReadRange(ctx, 0, blob.Size())
	if err != nil {
		return "", err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
