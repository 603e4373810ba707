package reports

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/securapass/internal/netx"
)

const presignExpiry = 15 * time.Minute

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
)

// S3Config points at an S3-compatible bucket. Endpoint may be empty for AWS.
type S3Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
}

// Enabled reports whether uploads are configured.
func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

// S3Uploader uploads through presigned PUT URLs, so the report body never
// passes through the SDK's own transport.
type S3Uploader struct {
	cfg     S3Config
	presign *s3.PresignClient
	http    *http.Client
	now     func() time.Time
}

func NewS3Uploader(ctx context.Context, cfg S3Config, httpClient *http.Client) (*S3Uploader, error) {
	if !cfg.Enabled() {
		return nil, errors.New("s3 bucket is not configured")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Uploader{
		cfg:     cfg,
		presign: s3.NewPresignClient(client),
		http:    httpClient,
		now:     time.Now,
	}, nil
}

// storageKey spreads reports by day: reports/2024/5/1/<uuid>-<name>.
func (u *S3Uploader) storageKey(name string) string {
	d := u.now().UTC()
	return fmt.Sprintf("reports/%d/%d/%d/%s-%s", d.Year(), d.Month(), d.Day(), uuid.NewString(), name)
}

func (u *S3Uploader) Upload(ctx context.Context, name string, body []byte) (string, error) {
	key := u.storageKey(name)
	bucket := u.cfg.Bucket

	req, err := presignPutObject(u.presign, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		ContentType: aws.String("text/plain"),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", fmt.Errorf("presign put: %w", err)
	}

	if err := netx.PutPresigned(ctx, u.http, req.URL, "text/plain", body); err != nil {
		return "", err
	}
	return key, nil
}
