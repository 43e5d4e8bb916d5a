package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/CowSmiles/tantivy/blobstore"
)

// commitPointerName is the virtual blob that carries the live prefix. It
// matches the pointer name the persistence publish flow writes.
const commitPointerName = "CURRENT"

// ErrConcurrentModification reports that another writer committed a newer
// generation between our read and our conditional write.
var ErrConcurrentModification = errors.New("s3: concurrent commit detected")

// DDBClient is the DynamoDB surface the commit store depends on.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// DDBCommitStore is a blobstore.BlobStore whose CURRENT pointer is kept in
// DynamoDB instead of S3. Regular blobs pass straight through to the
// underlying S3 store; updates to the pointer become conditional writes on a
// version counter, which gives publishers the compare-and-swap that plain S3
// puts lack.
//
// The table uses base_uri (string) as partition key and version (number) as
// sort key. Every commit inserts version latest+1 with a condition that the
// row does not exist yet, so of two racing publishers exactly one wins and
// the other gets ErrConcurrentModification.
type DDBCommitStore struct {
	blobs   *Store
	ddb     DDBClient
	table   string
	baseURI string
}

// NewDDBCommitStore wraps an S3 store with DynamoDB-coordinated commits.
// baseURI identifies this store in the commit table, conventionally the
// "s3://bucket/prefix" the blobs live under.
func NewDDBCommitStore(blobs *Store, ddb DDBClient, table, baseURI string) *DDBCommitStore {
	return &DDBCommitStore{blobs: blobs, ddb: ddb, table: table, baseURI: baseURI}
}

// Open resolves CURRENT through the commit table; everything else comes from
// S3. An empty commit table reads as blobstore.ErrNotFound.
func (s *DDBCommitStore) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	if name != commitPointerName {
		return s.blobs.Open(ctx, name)
	}
	latest, err := s.latestCommit(ctx)
	if err != nil {
		return nil, err
	}
	if latest.version == 0 {
		return nil, blobstore.ErrNotFound
	}
	return &pointerBlob{content: []byte(latest.prefix)}, nil
}

// Put commits CURRENT through the table; everything else goes to S3.
func (s *DDBCommitStore) Put(ctx context.Context, name string, data []byte) error {
	if name != commitPointerName {
		return s.blobs.Put(ctx, name, data)
	}
	return s.commit(ctx, string(data))
}

func (s *DDBCommitStore) Create(ctx context.Context, name string) (blobstore.WritableBlob, error) {
	return s.blobs.Create(ctx, name)
}

func (s *DDBCommitStore) Delete(ctx context.Context, name string) error {
	return s.blobs.Delete(ctx, name)
}

func (s *DDBCommitStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.blobs.List(ctx, prefix)
}

type commitRecord struct {
	version uint64
	prefix  string
}

// latestCommit reads the highest committed version for this base URI. A
// zero version means nothing was ever committed.
func (s *DDBCommitStore) latestCommit(ctx context.Context) (commitRecord, error) {
	out, err := s.ddb.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String("base_uri = :uri"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uri": &types.AttributeValueMemberS{Value: s.baseURI},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return commitRecord{}, fmt.Errorf("s3: query commit table: %w", err)
	}
	if len(out.Items) == 0 {
		return commitRecord{}, nil
	}

	item := out.Items[0]
	versionAttr, ok := item["version"].(*types.AttributeValueMemberN)
	if !ok {
		return commitRecord{}, errors.New("s3: commit record has no numeric version")
	}
	prefixAttr, ok := item["manifest_path"].(*types.AttributeValueMemberS)
	if !ok {
		return commitRecord{}, errors.New("s3: commit record has no manifest_path")
	}
	version, err := strconv.ParseUint(versionAttr.Value, 10, 64)
	if err != nil {
		return commitRecord{}, fmt.Errorf("s3: parse commit version: %w", err)
	}
	return commitRecord{version: version, prefix: prefixAttr.Value}, nil
}

// commit writes version latest+1 on the condition that it does not exist.
// Losing the race surfaces as ErrConcurrentModification; callers retry by
// re-publishing, not by overwriting.
func (s *DDBCommitStore) commit(ctx context.Context, prefix string) error {
	latest, err := s.latestCommit(ctx)
	if err != nil {
		return err
	}

	_, err = s.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item: map[string]types.AttributeValue{
			"base_uri":      &types.AttributeValueMemberS{Value: s.baseURI},
			"version":       &types.AttributeValueMemberN{Value: strconv.FormatUint(latest.version+1, 10)},
			"manifest_path": &types.AttributeValueMemberS{Value: prefix},
		},
		ConditionExpression: aws.String("attribute_not_exists(version)"),
	})
	if err != nil {
		var cond *types.ConditionalCheckFailedException
		if errors.As(err, &cond) {
			return ErrConcurrentModification
		}
		return fmt.Errorf("s3: commit version %d: %w", latest.version+1, err)
	}
	return nil
}

// pointerBlob serves the resolved CURRENT content from memory.
type pointerBlob struct {
	content []byte
}

func (b *pointerBlob) Close() error { return nil }

func (b *pointerBlob) Size() int64 { return int64(len(b.content)) }

func (b *pointerBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if off >= int64(len(b.content)) {
		return 0, io.EOF
	}
	n := copy(p, b.content[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (b *pointerBlob) ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error) {
	if off >= int64(len(b.content)) {
		return io.NopCloser(bytes.NewReader(nil)), nil
	}
	end := min(off+length, int64(len(b.content)))
	return io.NopCloser(bytes.NewReader(b.content[off:end])), nil
}
