package drive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	drive "google.golang.org/api/drive/v3"

	"github.com/yanqian/faq-relay/internal/domain/auth"
	apperrors "github.com/yanqian/faq-relay/pkg/errors"
)

// LoadOAuthConfig reads an installed-app client secret file scoped to read-only Drive access.
func LoadOAuthConfig(credentialsFile string) (*oauth2.Config, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeSourceAuth, "read drive client secret", err)
	}
	cfg, err := google.ConfigFromJSON(data, drive.DriveReadonlyScope)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeSourceAuth, "parse drive client secret", err)
	}
	return cfg, nil
}

// TokenSource reuses the stored token, refreshing it when expired and saving
// the result. A missing token is an authentication failure. Refreshes run
// long after construction, so they keep ctx's values but not its deadline.
func TokenSource(ctx context.Context, cfg *oauth2.Config, store *TokenStore, logger *slog.Logger) (oauth2.TokenSource, error) {
	tok, err := store.Load()
	if err != nil {
		if errors.Is(err, ErrNoToken) {
			return nil, apperrors.Wrap(apperrors.CodeSourceAuth, "no drive token, run `app auth drive` first", err)
		}
		return nil, apperrors.Wrap(apperrors.CodeSourceAuth, "load drive token", err)
	}
	persisting := &persistingTokenSource{
		base:   cfg.TokenSource(context.WithoutCancel(ctx), tok),
		store:  store,
		logger: logger.With("component", "docsource.drive.token"),
		last:   tok.AccessToken,
	}
	return oauth2.ReuseTokenSource(tok, persisting), nil
}

type callbackResult struct {
	code string
	err  error
}

// Authorize runs the installed-app flow: it listens on a loopback port, hands
// the consent URL to prompt, waits for the redirect and exchanges the code
// using PKCE. The token is saved to store.
func Authorize(ctx context.Context, cfg oauth2.Config, store *TokenStore, prompt func(url string), logger *slog.Logger) (*oauth2.Token, error) {
	log := logger.With("component", "docsource.drive.authorize")

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("listen on loopback: %w", err)
	}
	cfg.RedirectURL = fmt.Sprintf("http://%s/", listener.Addr().String())

	state, verifier, challenge, err := auth.NewOAuthState()
	if err != nil {
		listener.Close()
		return nil, fmt.Errorf("generate oauth state: %w", err)
	}

	results := make(chan callbackResult, 1)
	srv := &http.Server{
		Handler:           callbackHandler(state, results),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if serveErr := srv.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			log.Error("loopback server failed", "error", serveErr)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	authURL := cfg.AuthCodeURL(state,
		oauth2.SetAuthURLParam("access_type", "offline"),
		oauth2.SetAuthURLParam("prompt", "consent"),
		oauth2.SetAuthURLParam("code_challenge", challenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)
	log.Info("waiting for drive authorization", "redirect", cfg.RedirectURL)
	prompt(authURL)

	var result callbackResult
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case result = <-results:
	}
	if result.err != nil {
		return nil, apperrors.Wrap(apperrors.CodeSourceAuth, "drive authorization failed", result.err)
	}

	tok, err := cfg.Exchange(ctx, result.code, oauth2.SetAuthURLParam("code_verifier", verifier))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeSourceAuth, "exchange drive authorization code", err)
	}
	if err := store.Save(tok); err != nil {
		return nil, err
	}
	log.Info("drive token saved", "expiry", tok.Expiry)
	return tok, nil
}

func callbackHandler(state string, results chan<- callbackResult) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		var result callbackResult
		switch {
		case query.Get("state") != state:
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		case query.Get("error") != "":
			result.err = fmt.Errorf("consent denied: %s", query.Get("error"))
		case query.Get("code") == "":
			result.err = errors.New("missing authorization code")
		default:
			result.code = query.Get("code")
		}
		select {
		case results <- result:
		default:
		}
		if result.err != nil {
			http.Error(w, result.err.Error(), http.StatusBadRequest)
			return
		}
		fmt.Fprintln(w, "Authorization complete. You can close this window.")
	})
}
