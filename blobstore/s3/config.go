package s3

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Options configures New.
type Options struct {
	// Prefix is prepended to all keys (e.g. "indexes/").
	Prefix string

	// Region overrides the region from the default AWS config chain.
	Region string

	// Client overrides the S3 client entirely. When set, Region is ignored
	// and no AWS config is loaded.
	Client Client

	// Upload configures multipart uploads.
	Upload UploadConfig
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) func(*Options) {
	return func(o *Options) { o.Prefix = prefix }
}

// WithRegion sets the AWS region.
func WithRegion(region string) func(*Options) {
	return func(o *Options) { o.Region = region }
}

// WithClient injects a pre-built client.
func WithClient(client Client) func(*Options) {
	return func(o *Options) { o.Client = client }
}

// WithUploadConfig overrides the multipart upload settings.
func WithUploadConfig(cfg UploadConfig) func(*Options) {
	return func(o *Options) { o.Upload = cfg }
}

// New creates an S3 blob store, loading credentials and region from the
// default AWS config chain (environment, shared config, IMDS) unless a
// client is injected.
func New(ctx context.Context, bucket string, optFns ...func(*Options)) (*Store, error) {
	opts := Options{Upload: DefaultUploadConfig()}
	for _, fn := range optFns {
		fn(&opts)
	}

	client := opts.Client
	if client == nil {
		var loadOpts []func(*config.LoadOptions) error
		if opts.Region != "" {
			loadOpts = append(loadOpts, config.WithRegion(opts.Region))
		}
		cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
		if err != nil {
			return nil, err
		}
		client = s3.NewFromConfig(cfg)
	}

	return &Store{
		client: client,
		bucket: bucket,
		prefix: opts.Prefix,
		upload: opts.Upload,
	}, nil
}
