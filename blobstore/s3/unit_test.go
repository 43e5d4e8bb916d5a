package s3

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/CowSmiles/tantivy/blobstore"
)

func mockStore(t *testing.T, prefix string) (*Store, *MockS3Client) {
	t.Helper()
	client := new(MockS3Client)
	t.Cleanup(func() { client.AssertExpectations(t) })
	return NewStore(client, "test-bucket", prefix), client
}

func headMatcher(bucket, key string) any {
	return mock.MatchedBy(func(input *s3.HeadObjectInput) bool {
		return *input.Bucket == bucket && *input.Key == key
	})
}

func TestStore_Open(t *testing.T) {
	t.Run("NotFound", func(t *testing.T) {
		store, client := mockStore(t, "prefix")
		client.On("HeadObject", mock.Anything, headMatcher("test-bucket", "prefix/foo")).
			Return(nil, &types.NotFound{}).Once()

		_, err := store.Open(context.Background(), "foo")
		assert.ErrorIs(t, err, blobstore.ErrNotFound)
	})

	t.Run("SizeFromHead", func(t *testing.T) {
		store, client := mockStore(t, "prefix")
		client.On("HeadObject", mock.Anything, headMatcher("test-bucket", "prefix/bar")).
			Return(&s3.HeadObjectOutput{ContentLength: aws.Int64(100)}, nil).Once()

		blob, err := store.Open(context.Background(), "bar")
		assert.NoError(t, err)
		assert.Equal(t, int64(100), blob.Size())
	})
}

func TestStore_Delete(t *testing.T) {
	store, client := mockStore(t, "prefix")
	client.On("DeleteObject", mock.Anything, mock.MatchedBy(func(input *s3.DeleteObjectInput) bool {
		return *input.Bucket == "test-bucket" && *input.Key == "prefix/del"
	})).Return(&s3.DeleteObjectOutput{}, nil).Once()

	assert.NoError(t, store.Delete(context.Background(), "del"))
}

func TestStore_List(t *testing.T) {
	t.Run("StripsPrefix", func(t *testing.T) {
		store, client := mockStore(t, "prefix/")
		client.On("ListObjectsV2", mock.Anything, mock.MatchedBy(func(input *s3.ListObjectsV2Input) bool {
			return *input.Bucket == "test-bucket" && *input.Prefix == "prefix"
		})).Return(&s3.ListObjectsV2Output{
			Contents: []types.Object{
				{Key: aws.String("prefix/file1")},
				{Key: aws.String("prefix/dir/file2")},
			},
		}, nil).Once()

		keys, err := store.List(context.Background(), "")
		assert.NoError(t, err)
		assert.Equal(t, []string{"dir/file2", "file1"}, keys)
	})

	t.Run("FollowsPagination", func(t *testing.T) {
		store, client := mockStore(t, "prefix/")
		client.On("ListObjectsV2", mock.Anything, mock.MatchedBy(func(input *s3.ListObjectsV2Input) bool {
			return input.ContinuationToken == nil
		})).Return(&s3.ListObjectsV2Output{
			IsTruncated:           aws.Bool(true),
			NextContinuationToken: aws.String("token"),
			Contents:              []types.Object{{Key: aws.String("prefix/1")}},
		}, nil).Once()
		client.On("ListObjectsV2", mock.Anything, mock.MatchedBy(func(input *s3.ListObjectsV2Input) bool {
			return input.ContinuationToken != nil && *input.ContinuationToken == "token"
		})).Return(&s3.ListObjectsV2Output{
			IsTruncated: aws.Bool(false),
			Contents:    []types.Object{{Key: aws.String("prefix/2")}},
		}, nil).Once()

		keys, err := store.List(context.Background(), "")
		assert.NoError(t, err)
		assert.Equal(t, []string{"1", "2"}, keys)
	})
}

func TestStore_PutIfNotExists(t *testing.T) {
	t.Run("Created", func(t *testing.T) {
		store, client := mockStore(t, "prefix")
		client.On("PutObject", mock.Anything, mock.MatchedBy(func(input *s3.PutObjectInput) bool {
			return *input.Key == "prefix/lock" && input.IfNoneMatch != nil && *input.IfNoneMatch == "*"
		})).Return(&s3.PutObjectOutput{}, nil).Once()

		assert.NoError(t, store.PutIfNotExists(context.Background(), "lock", []byte("v1")))
	})

	t.Run("Conflict", func(t *testing.T) {
		store, client := mockStore(t, "prefix")
		client.On("PutObject", mock.Anything, mock.Anything).
			Return(nil, &smithy.GenericAPIError{Code: "PreconditionFailed"}).Once()

		err := store.PutIfNotExists(context.Background(), "lock", []byte("v2"))
		assert.ErrorIs(t, err, ErrConflict)
	})
}

func getMatcher(rng string) any {
	return mock.MatchedBy(func(input *s3.GetObjectInput) bool {
		return *input.Bucket == "b" && *input.Key == "k" && *input.Range == rng
	})
}

func TestBlob_ReadAt(t *testing.T) {
	client := new(MockS3Client)
	blob := &remoteBlob{client: client, bucket: "b", key: "k", size: 10}

	t.Run("Full", func(t *testing.T) {
		client.On("GetObject", mock.Anything, getMatcher("bytes=0-4")).Return(&s3.GetObjectOutput{
			Body: io.NopCloser(strings.NewReader("hello")),
		}, nil).Once()

		buf := make([]byte, 5)
		n, err := blob.ReadAt(context.Background(), buf, 0)
		assert.NoError(t, err)
		assert.Equal(t, 5, n)
		assert.Equal(t, "hello", string(buf))
	})

	t.Run("ClampedAtEnd", func(t *testing.T) {
		client.On("GetObject", mock.Anything, getMatcher("bytes=8-9")).Return(&s3.GetObjectOutput{
			Body: io.NopCloser(strings.NewReader("ld")),
		}, nil).Once()

		buf := make([]byte, 5)
		n, err := blob.ReadAt(context.Background(), buf, 8)
		assert.ErrorIs(t, err, io.EOF)
		assert.Equal(t, 2, n)
		assert.Equal(t, "ld", string(buf[:n]))
	})

	t.Run("PastEnd", func(t *testing.T) {
		n, err := blob.ReadAt(context.Background(), make([]byte, 4), 10)
		assert.ErrorIs(t, err, io.EOF)
		assert.Zero(t, n)
	})
}

func TestBlob_ReadRange(t *testing.T) {
	client := new(MockS3Client)
	blob := &remoteBlob{client: client, bucket: "b", key: "k", size: 10}

	client.On("GetObject", mock.Anything, getMatcher("bytes=2-6")).Return(&s3.GetObjectOutput{
		Body: io.NopCloser(strings.NewReader("llo W")),
	}, nil).Once()

	r, err := blob.ReadRange(context.Background(), 2, 5)
	assert.NoError(t, err)
	defer r.Close()

	buf, err := io.ReadAll(r)
	assert.NoError(t, err)
	assert.Equal(t, "llo W", string(buf))
}

func TestStore_Create(t *testing.T) {
	store, client := mockStore(t, "prefix")

	// The upload manager may hand PutObject a buffered body rather than the
	// pipe itself; draining it lets Close observe completion.
	client.On("PutObject", mock.Anything, mock.MatchedBy(func(input *s3.PutObjectInput) bool {
		return *input.Bucket == "test-bucket" && *input.Key == "prefix/new"
	})).Run(func(args mock.Arguments) {
		input := args.Get(1).(*s3.PutObjectInput)
		_, _ = io.ReadAll(input.Body)
	}).Return(&s3.PutObjectOutput{}, nil).Once()

	w, err := store.Create(context.Background(), "new")
	assert.NoError(t, err)

	_, err = w.Write([]byte("content"))
	assert.NoError(t, err)
	assert.NoError(t, w.Close())
}
