package s3

import (
	"crypto/rand"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CowSmiles/tantivy/blobstore"
)

// Live test against a real bucket; enabled by S3_BUCKET.
func TestIntegration_Store(t *testing.T) {
	bucket := os.Getenv("S3_BUCKET")
	if bucket == "" {
		t.Skip("S3_BUCKET not set")
	}

	ctx := t.Context()
	cfg, err := config.LoadDefaultConfig(ctx)
	require.NoError(t, err)

	prefix := fmt.Sprintf("tantivy-it-%d/", time.Now().UnixNano())
	store := NewStore(s3.NewFromConfig(cfg), bucket, prefix)

	t.Run("StreamAndRead", func(t *testing.T) {
		content := make([]byte, 1<<20)
		_, err := rand.Read(content)
		require.NoError(t, err)

		w, err := store.Create(ctx, "store.bin")
		require.NoError(t, err)
		n, err := w.Write(content)
		require.NoError(t, err)
		require.Equal(t, len(content), n)
		require.NoError(t, w.Close())
		defer store.Delete(ctx, "store.bin")

		names, err := store.List(ctx, "")
		require.NoError(t, err)
		assert.Contains(t, names, "store.bin")

		blob, err := store.Open(ctx, "store.bin")
		require.NoError(t, err)
		defer blob.Close()
		require.Equal(t, int64(len(content)), blob.Size())

		buf := make([]byte, 100)
		_, err = blob.ReadAt(ctx, buf, 0)
		require.NoError(t, err)
		assert.Equal(t, content[:100], buf)

		_, err = blob.ReadAt(ctx, buf, 1024)
		require.NoError(t, err)
		assert.Equal(t, content[1024:1124], buf)
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := store.Open(ctx, "nonexistent")
		assert.ErrorIs(t, err, blobstore.ErrNotFound)
	})
}
