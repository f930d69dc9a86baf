package storage

import (
	"context"
	"errors"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	"github.com/FredHutch/docker-eggnog-mapper/config"
)

// NewS3Client erstellt einen S3-Client. Ein eigener Endpunkt (z.B. MinIO
// oder ein S3-kompatibler Anbieter) wird über S3_ENDPOINT konfiguriert.
func NewS3Client(cfg *config.Config) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3Region),
	}
	if cfg.S3Key != "" {
		opts = append(opts,
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.S3Key, cfg.S3Secret, "")),
		)
	}
	if cfg.S3Endpoint != "" {
		resolver := aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				return aws.Endpoint{
					URL:               cfg.S3Endpoint,
					SigningRegion:     cfg.S3Region,
					HostnameImmutable: true,
				}, nil
			},
		)
		opts = append(opts, awsconfig.WithEndpointResolverWithOptions(resolver))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(), opts...)
	if err != nil {
		return nil, err
	}

	return s3.NewFromConfig(awsCfg), nil
}

// S3Store implementiert Store für S3-Locations.
type S3Store struct {
	Client *s3.Client
	Logger *zap.Logger
}

// Get lädt das Objekt als Stream. Die gemeldete ContentLength erlaubt dem
// Aufrufer, abgeschnittene Downloads zu erkennen.
func (s *S3Store) Get(ctx context.Context, location string) (io.ReadCloser, int64, error) {
	bucket, key, err := splitS3Location(location)
	if err != nil {
		return nil, 0, err
	}

	out, err := s.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, 0, ErrNotExist
		}
		return nil, 0, err
	}

	size := int64(-1)
	if out.ContentLength != nil {
		size = aws.ToInt64(out.ContentLength)
	}
	return out.Body, size, nil
}

// Put lädt das Objekt nach S3 hoch.
func (s *S3Store) Put(ctx context.Context, location string, r io.Reader, size int64) error {
	bucket, key, err := splitS3Location(location)
	if err != nil {
		return err
	}

	s.Logger.Debug("Lade Objekt nach S3 hoch",
		zap.String("bucket", bucket), zap.String("key", key), zap.Int64("size", size))

	input := &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   r,
	}
	if size >= 0 {
		input.ContentLength = aws.Int64(size)
	}
	_, err = s.Client.PutObject(ctx, input)
	return err
}

// Exists prüft per HeadObject, ob das Objekt existiert.
func (s *S3Store) Exists(ctx context.Context, location string) (bool, error) {
	bucket, key, err := splitS3Location(location)
	if err != nil {
		return false, err
	}

	_, err = s.Client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
