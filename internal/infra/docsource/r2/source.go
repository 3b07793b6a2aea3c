package r2

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yanqian/faq-relay/internal/domain/faq"
	apperrors "github.com/yanqian/faq-relay/pkg/errors"
)

const maxDocumentBytes = 10 << 20

// Config locates the FAQ object in an S3-compatible bucket such as Cloudflare R2.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Key       string
}

// Source reads the FAQ document from one object.
type Source struct {
	client *minio.Client
	bucket string
	key    string
	logger *slog.Logger
}

// NewSource constructs the object source.
func NewSource(cfg Config, logger *slog.Logger) (*Source, error) {
	if logger == nil {
		logger = slog.Default()
	}
	useSSL := strings.HasPrefix(strings.ToLower(strings.TrimSpace(cfg.Endpoint)), "https")
	client, err := minio.New(sanitizeEndpoint(cfg.Endpoint), &minio.Options{
		Creds:        credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:       useSSL,
		Region:       cfg.Region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("init r2 client: %w", err)
	}
	return &Source{
		client: client,
		bucket: cfg.Bucket,
		key:    cfg.Key,
		logger: logger.With("component", "docsource.r2"),
	}, nil
}

// Load implements faq.DocumentSource. A missing object is reported as not found.
func (s *Source) Load(ctx context.Context) (faq.Document, bool, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.key, minio.GetObjectOptions{})
	if err != nil {
		return faq.Document{}, false, classify(err)
	}
	defer obj.Close()

	info, err := obj.Stat()
	if err != nil {
		if isNotFound(err) {
			s.logger.Info("faq object not found", "bucket", s.bucket, "key", s.key)
			return faq.Document{}, false, nil
		}
		return faq.Document{}, false, classify(err)
	}

	data, err := io.ReadAll(io.LimitReader(obj, maxDocumentBytes))
	if err != nil {
		return faq.Document{}, false, apperrors.Wrap(apperrors.CodeSource, "read faq object", err)
	}
	return faq.Document{
		Name:     path.Base(s.key),
		SourceID: fmt.Sprintf("r2://%s/%s@%s", s.bucket, s.key, info.ETag),
		Content:  string(data),
	}, true, nil
}

var _ faq.DocumentSource = (*Source)(nil)

func isNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket" || resp.StatusCode == http.StatusNotFound
}

func classify(err error) error {
	resp := minio.ToErrorResponse(err)
	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden,
		resp.Code == "AccessDenied", resp.Code == "InvalidAccessKeyId", resp.Code == "SignatureDoesNotMatch":
		return apperrors.Wrap(apperrors.CodeSourceAuth, "r2 rejected credentials", err)
	default:
		return apperrors.Wrap(apperrors.CodeSource, "fetch faq object", err)
	}
}

// sanitizeEndpoint removes schemes and paths to satisfy minio.New expectations.
func sanitizeEndpoint(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "https://"), "http://")
	if host, _, found := strings.Cut(raw, "/"); found {
		return host
	}
	return raw
}
