package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/yanqian/faq-relay/internal/domain/faq"
	"github.com/yanqian/faq-relay/internal/infra/config"
	apperrors "github.com/yanqian/faq-relay/pkg/errors"
)

const shutdownTimeout = 10 * time.Second

// Gateway is a long-lived chat connection.
type Gateway interface {
	Start(ctx context.Context) error
	Stop() error
}

// App encapsulates the startup document load and the transport lifecycles.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	server  *http.Server
	faqSvc  faq.Service
	source  faq.DocumentSource
	gateway Gateway
}

// NewApp is used by Wire to build the runnable app. source and gateway may be nil.
func NewApp(cfg *config.Config, logger *slog.Logger, server *http.Server, faqSvc faq.Service, source faq.DocumentSource, gateway Gateway) *App {
	return &App{
		cfg:     cfg,
		logger:  logger.With("component", "bootstrap"),
		server:  server,
		faqSvc:  faqSvc,
		source:  source,
		gateway: gateway,
	}
}

// LoadDocument fetches the FAQ document once. Credential failures are
// returned; a missing or unreachable document only disables FAQ answers.
func (a *App) LoadDocument(ctx context.Context) error {
	if a.source == nil {
		a.logger.Warn("no faq document source configured, faq commands will report not configured")
		return nil
	}
	timeout := a.cfg.Document.LoadTimeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	loadCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	_, err := a.faqSvc.Load(loadCtx, a.source)
	switch {
	case err == nil:
		return nil
	case apperrors.IsCode(err, apperrors.CodeSourceAuth):
		return err
	case errors.Is(err, faq.ErrDocumentNotFound):
		a.logger.Warn("faq document not found, faq commands will report not configured", "name_match", a.cfg.Document.NameMatch)
		return nil
	default:
		a.logger.Error("faq document load failed, faq commands will report not configured", "error", err)
		return nil
	}
}

// Run loads the document, starts the chat gateway and the HTTP server, and
// blocks until ctx is done or a transport fails.
func (a *App) Run(ctx context.Context) error {
	if err := a.LoadDocument(ctx); err != nil {
		return err
	}

	if a.gateway != nil {
		if err := a.gateway.Start(ctx); err != nil {
			return err
		}
		a.logger.Info("chat gateway started")
		defer func() {
			if err := a.gateway.Stop(); err != nil {
				a.logger.Warn("chat gateway close failed", "error", err)
			}
		}()
	}

	errCh := make(chan error, 1)
	if a.server != nil && a.cfg.HTTP.Enabled {
		go func() {
			a.logger.Info("http server starting", "address", a.cfg.HTTP.Address)
			if err := a.server.ListenAndServe(); err != nil {
				errCh <- err
			}
		}()
	}

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
		if a.server == nil || !a.cfg.HTTP.Enabled {
			return nil
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Ask loads the document and answers a single question. Used by the CLI.
func (a *App) Ask(ctx context.Context, question string, strategy faq.Strategy) (faq.Response, error) {
	if err := a.LoadDocument(ctx); err != nil {
		return faq.Response{}, err
	}
	return a.faqSvc.Answer(ctx, faq.Request{Question: question, Strategy: strategy})
}
