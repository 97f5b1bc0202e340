package blob

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsCfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/bytedance/sonic"
	"github.com/taskflow-io/hourtrack/internal/config"
)

// ExportStore writes JSON documents to one S3 (or S3-compatible) bucket and
// hands out pre-signed links to them.
type ExportStore struct {
	client    *s3.Client
	uploader  *manager.Uploader
	presigner *s3.PresignClient
	bucket    string
	sse       *s3types.ServerSideEncryption
	now       func() time.Time
}

func NewS3(ctx context.Context, cfg config.S3Cfg) (*ExportStore, error) {
	loadOpts := []func(*awsCfg.LoadOptions) error{
		awsCfg.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		loadOpts = append(loadOpts, awsCfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	acfg, err := awsCfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	endpoint, err := endpointURL(cfg.Endpoint)
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(acfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	store := &ExportStore{
		client:    client,
		uploader:  manager.NewUploader(client),
		presigner: s3.NewPresignClient(client),
		bucket:    cfg.Bucket,
		now:       time.Now,
	}
	if cfg.SSE != "" {
		v := s3types.ServerSideEncryption(cfg.SSE)
		store.sse = &v
	}
	return store, nil
}

// endpointURL normalizes a bare host to an https URL. Empty means the AWS default.
func endpointURL(raw string) (string, error) {
	ep := strings.TrimSpace(raw)
	if ep == "" {
		return "", nil
	}
	if !strings.HasPrefix(ep, "http://") && !strings.HasPrefix(ep, "https://") {
		ep = "https://" + ep
	}
	u, err := url.Parse(ep)
	if err != nil {
		return "", fmt.Errorf("invalid s3 endpoint %q: %w", raw, err)
	}
	return u.String(), nil
}

// Ping checks that the bucket exists and the credentials can reach it.
func (s *ExportStore) Ping(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err != nil {
		return fmt.Errorf("head bucket %s: %w", s.bucket, err)
	}
	return nil
}

type UploadedMeta struct {
	Bucket string
	Key    string
	ETag   string
	SHA256 string
	SizeB  int64
}

// UploadJSON stores data under <keyPrefix>/<yyyy/mm/dd>/<sha256>.json. Identical
// documents uploaded on the same day share a key.
func (s *ExportStore) UploadJSON(ctx context.Context, keyPrefix string, data any) (*UploadedMeta, error) {
	body, err := sonic.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal json: %w", err)
	}

	sum := sha256.Sum256(body)
	sumHex := hex.EncodeToString(sum[:])
	key := path.Join(keyPrefix, s.now().UTC().Format("2006/01/02"), sumHex+".json")

	input := &s3.PutObjectInput{
		Bucket:             aws.String(s.bucket),
		Key:                aws.String(key),
		Body:               bytes.NewReader(body),
		ContentType:        aws.String("application/json"),
		ContentDisposition: aws.String(fmt.Sprintf(`attachment; filename="hours-%s.json"`, s.now().UTC().Format("20060102"))),
		Metadata:           map[string]string{"sha256": sumHex},
	}
	if s.sse != nil {
		input.ServerSideEncryption = *s.sse
	}

	out, err := s.uploader.Upload(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", key, err)
	}

	meta := &UploadedMeta{
		Bucket: s.bucket,
		Key:    key,
		SHA256: sumHex,
		SizeB:  int64(len(body)),
	}
	if out.ETag != nil {
		meta.ETag = *out.ETag
	}
	return meta, nil
}

// PresignGet returns a GET URL for key valid for expire.
func (s *ExportStore) PresignGet(ctx context.Context, key string, expire time.Duration) (string, error) {
	if key == "" {
		return "", errors.New("key is empty")
	}
	ps, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expire))
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	return ps.URL, nil
}
