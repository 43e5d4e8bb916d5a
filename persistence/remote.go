package persistence

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/CowSmiles/tantivy"
	"github.com/CowSmiles/tantivy/blobstore"
	"github.com/CowSmiles/tantivy/internal/cache"
	"github.com/CowSmiles/tantivy/internal/resource"
)

// UploadOptions configures directory uploads to a blob store.
type UploadOptions struct {
	// Parallelism is the number of concurrent file uploads. Defaults to 4.
	Parallelism int

	// RateLimitBytesPerSec throttles upload throughput across all files.
	// If 0, unlimited.
	RateLimitBytesPerSec int64

	// Logger receives one entry per uploaded file. Defaults to a noop
	// logger.
	Logger *tantivy.Logger

	// Controller, if set, gates uploads through the shared resource
	// controller: each file takes a background worker slot and writes
	// draw from the global IO budget.
	Controller *resource.Controller
}

// DefaultUploadOptions returns the default upload configuration.
func DefaultUploadOptions() UploadOptions {
	return UploadOptions{
		Parallelism: 4,
		Logger:      tantivy.NoopLogger(),
	}
}

// UploadDir uploads every regular file under dir to the blob store, named
// prefix plus the slash-separated relative path. Files are uploaded in
// parallel; the first failure cancels the rest.
func UploadDir(ctx context.Context, store blobstore.BlobStore, dir, prefix string, optFns ...func(*UploadOptions)) error {
	opts := DefaultUploadOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Parallelism <= 0 {
		opts.Parallelism = DefaultUploadOptions().Parallelism
	}
	if opts.Logger == nil {
		opts.Logger = tantivy.NoopLogger()
	}

	var limiter *rate.Limiter
	if opts.RateLimitBytesPerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimitBytesPerSec), int(opts.RateLimitBytesPerSec))
	}

	var files []string
	err := filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Parallelism)
	for _, file := range files {
		g.Go(func() error {
			rel, err := filepath.Rel(dir, file)
			if err != nil {
				return err
			}
			name := filepath.ToSlash(filepath.Join(prefix, rel))
			if opts.Controller != nil {
				if err := opts.Controller.AcquireBackground(ctx); err != nil {
					return err
				}
				defer opts.Controller.ReleaseBackground()
			}
			err = uploadFile(ctx, store, file, name, limiter, opts.Controller)
			opts.Logger.LogSave(ctx, name, err)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	opts.Logger.WithCount(len(files)).InfoContext(ctx, "upload completed", "prefix", prefix)
	return nil
}

func uploadFile(ctx context.Context, store blobstore.BlobStore, path, name string, limiter *rate.Limiter, rc *resource.Controller) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w, err := store.Create(ctx, name)
	if err != nil {
		return err
	}

	var dst io.Writer = w
	if rc != nil {
		dst = resource.NewRateLimitedWriter(ctx, w, rc)
	}

	buf := make([]byte, 256*1024)
	for {
		n, rerr := f.Read(buf)
		if n > 0 {
			if limiter != nil {
				if err := waitN(ctx, limiter, n); err != nil {
					_ = w.Close()
					return err
				}
			}
			if _, werr := dst.Write(buf[:n]); werr != nil {
				_ = w.Close()
				return fmt.Errorf("persistence: upload %s: %w", name, werr)
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			_ = w.Close()
			return rerr
		}
	}
	return w.Close()
}

// waitN reserves n bytes from the limiter, splitting reservations larger
// than the limiter burst.
func waitN(ctx context.Context, limiter *rate.Limiter, n int) error {
	for n > 0 {
		chunk := n
		if burst := limiter.Burst(); chunk > burst {
			chunk = burst
		}
		if err := limiter.WaitN(ctx, chunk); err != nil {
			return err
		}
		n -= chunk
	}
	return nil
}

// FetchOptions configures store downloads from a blob store.
type FetchOptions struct {
	// Cache, if set, routes the download through a block cache so repeated
	// fetches of the same store hit the cache instead of the backend.
	Cache cache.BlockCache

	// CacheBlockSize is the cache block granularity in bytes. Defaults to
	// 64KB when a cache is set.
	CacheBlockSize int64
}

// FetchStore downloads a store blob and opens a reader over it. Blobs that
// support zero-copy access (local mmap-backed stores) are opened in place;
// the returned closer releases the mapping or the downloaded buffer.
func FetchStore(ctx context.Context, store blobstore.BlobStore, name string, optFns ...func(*FetchOptions)) (*StoreReader, io.Closer, error) {
	var opts FetchOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Cache != nil {
		if opts.CacheBlockSize <= 0 {
			opts.CacheBlockSize = 64 * 1024
		}
		store = blobstore.NewCachingStore(store, opts.Cache, opts.CacheBlockSize)
	}

	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, nil, err
	}

	if m, ok := blob.(blobstore.Mappable); ok {
		data, err := m.Bytes()
		if err == nil {
			sr, err := OpenStoreBytes(data)
			if err != nil {
				_ = blob.Close()
				return nil, nil, err
			}
			return sr, blob, nil
		}
	}

	rc, err := blob.ReadRange(ctx, 0, blob.Size())
	if err != nil {
		_ = blob.Close()
		return nil, nil, err
	}
	data, err := io.ReadAll(rc)
	_ = rc.Close()
	_ = blob.Close()
	if err != nil {
		return nil, nil, err
	}
	sr, err := OpenStoreBytes(data)
	if err != nil {
		return nil, nil, err
	}
	return sr, nopCloser{}, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
