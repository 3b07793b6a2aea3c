package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/faq-relay/internal/bootstrap"
	"github.com/yanqian/faq-relay/internal/domain/auth"
	"github.com/yanqian/faq-relay/internal/domain/chatbot"
	"github.com/yanqian/faq-relay/internal/domain/completion"
	"github.com/yanqian/faq-relay/internal/domain/faq"
	"github.com/yanqian/faq-relay/internal/infra/config"
	"github.com/yanqian/faq-relay/internal/infra/docsource/drive"
	"github.com/yanqian/faq-relay/internal/infra/docsource/file"
	"github.com/yanqian/faq-relay/internal/infra/docsource/r2"
	"github.com/yanqian/faq-relay/internal/infra/faqrepo"
	"github.com/yanqian/faq-relay/internal/infra/faqstore"
	"github.com/yanqian/faq-relay/internal/infra/llm/chatgpt"
	"github.com/yanqian/faq-relay/internal/infra/llm/claude"
	"github.com/yanqian/faq-relay/internal/infra/llm/gemini"
	"github.com/yanqian/faq-relay/internal/infra/tokenizer"
	"github.com/yanqian/faq-relay/internal/interface/discord"
)

func provideFAQConfig(cfg *config.Config) faq.Config {
	return faq.Config{
		Model:              cfg.LLM.Model,
		Prompt:             cfg.FAQ.Prompt,
		MaxAnswerTokens:    cfg.FAQ.MaxAnswerTokens,
		Temperature:        cfg.FAQ.Temperature,
		TopRecommendations: cfg.FAQ.TopRecommendations,
		HistoryLimit:       cfg.FAQ.HistoryLimit,
	}
}

func provideChatConfig(cfg *config.Config) chatbot.Config {
	return chatbot.Config{
		Commands: chatbot.Commands{
			Ask:        cfg.Chat.Commands.Ask,
			FAQ:        cfg.Chat.Commands.FAQ,
			FAQLiteral: cfg.Chat.Commands.FAQLiteral,
			Trending:   cfg.Chat.Commands.Trending,
		},
		Model:       cfg.LLM.Model,
		Prompt:      cfg.Chat.Prompt,
		MaxTokens:   cfg.Chat.MaxTokens,
		Temperature: cfg.Chat.Temperature,
	}
}

func provideAuthConfig(cfg *config.Config) auth.Config {
	return auth.Config{
		Secret:   cfg.HTTP.Auth.Secret,
		Issuer:   cfg.HTTP.Auth.Issuer,
		TokenTTL: cfg.HTTP.Auth.TokenTTL,
	}
}

// provideCompletionClient returns nil when the backend cannot be built, in
// which case every completion-backed reply is the apology string.
func provideCompletionClient(cfg *config.Config, logger *slog.Logger) completion.Client {
	var (
		client completion.Client
		err    error
	)
	switch cfg.LLM.Provider {
	case config.ProviderAnthropic:
		client, err = claude.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Model)
	case config.ProviderGemini:
		ctx, cancel := context.WithTimeout(context.Background(), cfg.LLM.Timeout)
		defer cancel()
		client, err = gemini.NewClient(ctx, cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Model)
	default:
		client, err = chatgpt.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Model, cfg.LLM.Timeout)
	}
	if err != nil {
		logger.Error("completion backend unavailable, replies will apologise", "provider", cfg.LLM.Provider, "error", err)
		return nil
	}
	logger.Info("completion backend ready", "provider", cfg.LLM.Provider, "model", cfg.LLM.Model)
	return client
}

func provideTokenCounter(cfg *config.Config, logger *slog.Logger) faq.TokenCounter {
	counter := tokenizer.NewCounter(cfg.LLM.Model, logger)
	go counter.Warm()
	return counter
}

// provideDocumentSource returns nil for source "none". Drive credential
// problems surface here and abort startup.
func provideDocumentSource(cfg *config.Config, logger *slog.Logger) (faq.DocumentSource, error) {
	doc := cfg.Document
	switch doc.Source {
	case config.SourceDrive:
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		source, err := drive.NewSource(ctx, drive.Config{
			FolderID:           doc.Drive.FolderID,
			NameMatch:          doc.NameMatch,
			CredentialsFile:    doc.Drive.CredentialsFile,
			TokenFile:          doc.Drive.TokenFile,
			TokenEncryptionKey: doc.Drive.TokenEncryptionKey,
		}, logger)
		if err != nil {
			return nil, err
		}
		return source, nil
	case config.SourceR2:
		source, err := r2.NewSource(r2.Config{
			Endpoint:  doc.R2.Endpoint,
			AccessKey: doc.R2.AccessKey,
			SecretKey: doc.R2.SecretKey,
			Bucket:    doc.R2.Bucket,
			Region:    doc.R2.Region,
			Key:       doc.R2.Key,
		}, logger)
		if err != nil {
			return nil, err
		}
		return source, nil
	case config.SourceFile:
		return file.NewSource(doc.File.Path, logger), nil
	default:
		return nil, nil
	}
}

func provideQueryLog(cfg *config.Config, logger *slog.Logger) faq.QueryLog {
	fallback := faqrepo.NewMemoryRepository(cfg.FAQ.HistoryLimit * 10)
	dsn := strings.TrimSpace(cfg.FAQ.Postgres.DSN)
	if dsn == "" {
		logger.Info("faq postgres dsn not set, using memory query log")
		return fallback
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory query log", "error", err)
		return fallback
	}
	if cfg.FAQ.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.FAQ.Postgres.MaxConns
	}
	if cfg.FAQ.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.FAQ.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory query log", "error", err)
		return fallback
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory query log", "error", err)
		pool.Close()
		return fallback
	}
	repo := faqrepo.NewPostgresRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		logger.Error("postgres schema setup failed, using memory query log", "error", err)
		pool.Close()
		return fallback
	}
	logger.Info("faq postgres query log enabled")
	return repo
}

func provideFAQStore(cfg *config.Config, logger *slog.Logger) faq.Store {
	if cfg.FAQ.Redis.Enabled {
		opt, err := buildValkeyOptions(cfg)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory store", "error", err)
			return faqstore.NewMemoryStore()
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory store", "error", err)
			return faqstore.NewMemoryStore()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory store", "error", err)
			client.Close()
		} else {
			logger.Info("faq valkey store enabled", "addr", cfg.FAQ.Redis.Addr)
			return faqstore.NewValkeyStore(client, "faq")
		}
	}
	return faqstore.NewMemoryStore()
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	if strings.Contains(cfg.FAQ.Redis.Addr, "://") {
		return valkey.ParseURL(cfg.FAQ.Redis.Addr)
	}
	return valkey.ClientOption{InitAddress: []string{cfg.FAQ.Redis.Addr}}, nil
}

// provideGateway returns nil when the chat gateway is disabled.
func provideGateway(cfg *config.Config, dispatcher *chatbot.Dispatcher, logger *slog.Logger) (bootstrap.Gateway, error) {
	if !cfg.Discord.Enabled {
		logger.Info("discord gateway disabled")
		return nil, nil
	}
	if strings.TrimSpace(cfg.Discord.Token) == "" {
		return nil, errors.New("discord.token is required when discord is enabled")
	}
	gateway, err := discord.NewGateway(cfg.Discord.Token, dispatcher, logger)
	if err != nil {
		return nil, err
	}
	return gateway, nil
}

// provideNoGateway and provideNoServer build an App for one-shot CLI commands.
func provideNoGateway() bootstrap.Gateway { return nil }

func provideNoServer() *http.Server { return nil }
