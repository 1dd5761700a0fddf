package fetch

import (
	"context"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
)

type MirrorOpts func(c *mirrorConfig)

type mirrorConfig struct {
	endpoint        string
	bucket          string
	accessKey       string
	secretAccessKey string
	useSSL          bool
}

// Mirror is an S3 compatible bucket holding copies of hub files under
// "<owner>/<name>/<file>".
type Mirror struct {
	bucket string
	client *minio.Client
}

func NewMirror(opts ...MirrorOpts) (*Mirror, error) {
	cfg := &mirrorConfig{}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.endpoint == "" || cfg.bucket == "" {
		return nil, errors.New("mirror endpoint and bucket are required")
	}

	client, err := minio.New(cfg.endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.accessKey, cfg.secretAccessKey, ""),
		Secure: cfg.useSSL,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create mirror client")
	}

	return &Mirror{bucket: cfg.bucket, client: client}, nil
}

// Downloader returns a downloader for one object of the mirror.
func (m *Mirror) Downloader(key string) Downloader {
	return &minioDownloader{mirror: m, key: key}
}

type minioDownloader struct {
	mirror *Mirror
	key    string
}

func (s *minioDownloader) Get(ctx context.Context, dst io.Writer) error {
	object, err := s.mirror.client.GetObject(ctx, s.mirror.bucket, s.key, minio.GetObjectOptions{})
	if err != nil {
		return errors.Wrapf(err, "failed to get object %s", s.key)
	}
	defer object.Close()

	info, err := object.Stat()
	if err != nil {
		return errors.Wrapf(err, "failed to stat object %s", s.key)
	}

	return copyWithProgress(ctx, s.key, dst, object, info.Size)
}

func (s *minioDownloader) Type() string {
	return "minio"
}

func WithEndpoint(endpoint string) MirrorOpts {
	return func(c *mirrorConfig) {
		c.endpoint = endpoint
	}
}

func WithBucket(bucket string) MirrorOpts {
	return func(c *mirrorConfig) {
		c.bucket = bucket
	}
}

func WithAccessKey(accessKey string) MirrorOpts {
	return func(c *mirrorConfig) {
		c.accessKey = accessKey
	}
}

func WithSecretKey(secretKey string) MirrorOpts {
	return func(c *mirrorConfig) {
		c.secretAccessKey = secretKey
	}
}

func WithSSL(useSSL bool) MirrorOpts {
	return func(c *mirrorConfig) {
		c.useSSL = useSSL
	}
}
