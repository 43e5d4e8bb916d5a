package minio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/CowSmiles/tantivy/blobstore"
	"github.com/minio/minio-go/v7"
)

// Store serves blobs out of a MinIO (or any S3-compatible) bucket. All keys
// live under a fixed root prefix so several stores can share one bucket.
type Store struct {
	client *minio.Client
	bucket string
	root   string
}

// NewStore returns a Store reading and writing under root in bucket.
func NewStore(client *minio.Client, bucket, root string) *Store {
	return &Store{client: client, bucket: bucket, root: root}
}

func (s *Store) key(name string) string {
	return path.Join(s.root, name)
}

func isMissing(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NotFound"
}

// Open stats the object up front so Size is known without another round
// trip; a missing object surfaces as blobstore.ErrNotFound.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	key := s.key(name)
	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if isMissing(err) {
			return nil, blobstore.ErrNotFound
		}
		return nil, err
	}
	return &objectBlob{store: s, key: key, size: info.Size}, nil
}

// Put uploads data as a single object. Object stores replace whole keys, so
// the write is atomic from a reader's point of view.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, s.key(name),
		bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{})
	return err
}

// Create starts a streaming upload through a pipe. The object becomes
// visible only when Close returns without error.
func (s *Store) Create(ctx context.Context, name string) (blobstore.WritableBlob, error) {
	pr, pw := io.Pipe()
	w := &objectWriter{pw: pw, done: make(chan error, 1)}

	go func() {
		_, err := s.client.PutObject(ctx, s.bucket, s.key(name), pr, -1, minio.PutObjectOptions{})
		_ = pr.CloseWithError(err)
		w.done <- err
	}()
	return w, nil
}

// Delete removes the object. A missing object is not an error.
func (s *Store) Delete(ctx context.Context, name string) error {
	err := s.client.RemoveObject(ctx, s.bucket, s.key(name), minio.RemoveObjectOptions{})
	if err != nil && !isMissing(err) {
		return err
	}
	return nil
}

// List returns the store-relative names of all objects under prefix, sorted.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	opts := minio.ListObjectsOptions{Prefix: s.key(prefix), Recursive: true}

	var names []string
	for obj := range s.client.ListObjects(ctx, s.bucket, opts) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		name := strings.TrimPrefix(strings.TrimPrefix(obj.Key, s.root), "/")
		if name != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

type objectBlob struct {
	store *Store
	key   string
	size  int64
}

func (b *objectBlob) Size() int64 { return b.size }

func (b *objectBlob) Close() error { return nil }

// rangeGet issues one ranged GET for [off, off+length), clamped to the
// object size recorded at Open time.
func (b *objectBlob) rangeGet(ctx context.Context, off, length int64) (io.ReadCloser, int64, error) {
	end := min(off+length, b.size) - 1
	opts := minio.GetObjectOptions{}
	if err := opts.SetRange(off, end); err != nil {
		return nil, 0, err
	}
	obj, err := b.store.client.GetObject(ctx, b.store.bucket, b.key, opts)
	if err != nil {
		return nil, 0, err
	}
	return obj, end - off + 1, nil
}

func (b *objectBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	rc, n, err := b.rangeGet(ctx, off, int64(len(p)))
	if err != nil {
		return 0, err
	}
	defer rc.Close()
	return io.ReadFull(rc, p[:n])
}

func (b *objectBlob) ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error) {
	rc, _, err := b.rangeGet(ctx, off, length)
	return rc, err
}

type objectWriter struct {
	pw   *io.PipeWriter
	done chan error
	once atomic.Bool
}

func (w *objectWriter) Write(p []byte) (int, error) {
	return w.pw.Write(p)
}

// Close shuts the pipe and waits for the background upload to finish, so a
// nil return means the object is durable.
func (w *objectWriter) Close() error {
	if !w.once.CompareAndSwap(false, true) {
		return errors.New("minio: writer already closed")
	}
	if err := w.pw.Close(); err != nil {
		return err
	}
	return <-w.done
}

// Abort cancels the upload. Calling it after Close is a no-op.
func (w *objectWriter) Abort() error {
	if !w.once.CompareAndSwap(false, true) {
		return nil
	}
	return w.pw.CloseWithError(errors.New("minio: upload aborted"))
}

// Sync is a no-op; durability comes from Close completing the upload.
func (w *objectWriter) Sync() error { return nil }
