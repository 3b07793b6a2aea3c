package drive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/yanqian/faq-relay/internal/domain/faq"
	apperrors "github.com/yanqian/faq-relay/pkg/errors"
)

const (
	googleAppsPrefix = "application/vnd.google-apps."
	exportMimeType   = "text/plain"
	listPageSize     = 100
	maxDocumentBytes = 10 << 20
)

var errStopPaging = errors.New("stop paging")

// Config locates the FAQ document in a Drive folder.
type Config struct {
	FolderID           string
	NameMatch          string
	CredentialsFile    string
	TokenFile          string
	TokenEncryptionKey string
}

// Source finds the FAQ document in a Drive folder by name and downloads it as plain text.
type Source struct {
	service   *drive.Service
	folderID  string
	nameMatch string
	logger    *slog.Logger
}

// NewSource authenticates with the stored token and builds the Drive client.
func NewSource(ctx context.Context, cfg Config, logger *slog.Logger) (*Source, error) {
	oauthCfg, err := LoadOAuthConfig(cfg.CredentialsFile)
	if err != nil {
		return nil, err
	}
	ts, err := TokenSource(ctx, oauthCfg, NewTokenStore(cfg.TokenFile, cfg.TokenEncryptionKey), logger)
	if err != nil {
		return nil, err
	}
	return NewSourceWithOptions(ctx, cfg.FolderID, cfg.NameMatch, logger, option.WithTokenSource(ts))
}

// NewSourceWithOptions builds the source from explicit client options.
func NewSourceWithOptions(ctx context.Context, folderID, nameMatch string, logger *slog.Logger, opts ...option.ClientOption) (*Source, error) {
	service, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeSource, "init drive client", err)
	}
	if strings.TrimSpace(nameMatch) == "" {
		nameMatch = "faq"
	}
	return &Source{
		service:   service,
		folderID:  folderID,
		nameMatch: strings.ToLower(nameMatch),
		logger:    logger.With("component", "docsource.drive"),
	}, nil
}

// Load implements faq.DocumentSource. The first file in the folder whose name
// contains the configured match, case-insensitively, is used.
func (s *Source) Load(ctx context.Context) (faq.Document, bool, error) {
	file, err := s.find(ctx)
	if err != nil {
		return faq.Document{}, false, classify(err, "list drive folder")
	}
	if file == nil {
		s.logger.Info("no faq file in drive folder", "folder_id", s.folderID, "name_match", s.nameMatch)
		return faq.Document{}, false, nil
	}
	s.logger.Info("faq file found", "file_id", file.Id, "name", file.Name, "mime_type", file.MimeType)

	content, err := s.download(ctx, file)
	if err != nil {
		return faq.Document{}, false, classify(err, "download faq file")
	}
	return faq.Document{
		Name:     file.Name,
		SourceID: "drive://" + file.Id,
		Content:  content,
	}, true, nil
}

func (s *Source) find(ctx context.Context) (*drive.File, error) {
	var match *drive.File
	query := fmt.Sprintf("'%s' in parents and trashed = false", escapeQuery(s.folderID))
	err := s.service.Files.List().
		Q(query).
		PageSize(listPageSize).
		Fields("nextPageToken", "files(id, name, mimeType)").
		Pages(ctx, func(page *drive.FileList) error {
			for _, f := range page.Files {
				if strings.Contains(strings.ToLower(f.Name), s.nameMatch) {
					match = f
					return errStopPaging
				}
			}
			return nil
		})
	if err != nil && !errors.Is(err, errStopPaging) {
		return nil, err
	}
	return match, nil
}

func (s *Source) download(ctx context.Context, file *drive.File) (string, error) {
	var (
		resp *http.Response
		err  error
	)
	if strings.HasPrefix(file.MimeType, googleAppsPrefix) {
		resp, err = s.service.Files.Export(file.Id, exportMimeType).Context(ctx).Download()
	} else {
		resp, err = s.service.Files.Get(file.Id).Context(ctx).Download()
	}
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

var _ faq.DocumentSource = (*Source)(nil)

// classify separates credential problems, which are fatal at startup, from
// ordinary fetch failures.
func classify(err error, msg string) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && (apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden) {
		return apperrors.Wrap(apperrors.CodeSourceAuth, msg, err)
	}
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return apperrors.Wrap(apperrors.CodeSourceAuth, msg, err)
	}
	return apperrors.Wrap(apperrors.CodeSource, msg, err)
}

func escapeQuery(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	return strings.ReplaceAll(v, `'`, `\'`)
}
