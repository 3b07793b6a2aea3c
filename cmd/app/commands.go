package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yanqian/faq-relay/internal/domain/auth"
	"github.com/yanqian/faq-relay/internal/domain/faq"
	"github.com/yanqian/faq-relay/internal/infra/config"
	"github.com/yanqian/faq-relay/internal/infra/docsource/drive"
	"github.com/yanqian/faq-relay/pkg/logger"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Load the FAQ document and run the chat gateway and HTTP API",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	app, err := initializeApp(cfg, logger.New())
	if err != nil {
		return fmt.Errorf("wire application: %w", err)
	}
	if err := app.Run(ctx); err != nil {
		return fmt.Errorf("application stopped: %w", err)
	}
	return nil
}

func askCmd() *cobra.Command {
	var literal bool
	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Answer one question from the FAQ document and exit",
		Long: `Answer one question from the configured FAQ document.

Examples:
  app ask "how do I reset my password"
  app ask --literal "parking"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			app, err := initializeAskApp(cfg, logger.NewWithWriter(os.Stderr))
			if err != nil {
				return fmt.Errorf("wire application: %w", err)
			}
			strategy := faq.StrategySemantic
			if literal {
				strategy = faq.StrategyLiteral
			}
			resp, err := app.Ask(cmd.Context(), strings.Join(args, " "), strategy)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Answer)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&literal, "literal", "l", false, "use line matching instead of the completion model")
	return cmd
}

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage document source credentials",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "drive",
		Short: "Authorize read-only Google Drive access and store the refresh token",
		Args:  cobra.NoArgs,
		RunE:  runAuthDrive,
	})
	return cmd
}

func runAuthDrive(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	oauthCfg, err := drive.LoadOAuthConfig(cfg.Document.Drive.CredentialsFile)
	if err != nil {
		return err
	}
	store := drive.NewTokenStore(cfg.Document.Drive.TokenFile, cfg.Document.Drive.TokenEncryptionKey)
	out := cmd.OutOrStdout()
	prompt := func(url string) {
		fmt.Fprintf(out, "Open this link in your browser to grant read-only Drive access:\n\n%s\n\n", url)
	}
	if _, err := drive.Authorize(ctx, *oauthCfg, store, prompt, logger.NewWithWriter(os.Stderr)); err != nil {
		return err
	}
	fmt.Fprintf(out, "Token saved to %s\n", cfg.Document.Drive.TokenFile)
	return nil
}

func tokenCmd() *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			svc := auth.NewService(provideAuthConfig(cfg), logger.Discard())
			issued, err := svc.IssueToken(context.Background(), subject, ttl)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, issued.Token)
			fmt.Fprintf(out, "expires %s\n", issued.ExpiresAt.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "token subject recorded in request logs")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to http.auth.tokenTTL)")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}
