//go:build wireinject
// +build wireinject

package main

import (
	"log/slog"

	"github.com/google/wire"

	"github.com/yanqian/faq-relay/internal/bootstrap"
	"github.com/yanqian/faq-relay/internal/domain/auth"
	"github.com/yanqian/faq-relay/internal/domain/chatbot"
	"github.com/yanqian/faq-relay/internal/domain/faq"
	"github.com/yanqian/faq-relay/internal/infra/config"
	httpiface "github.com/yanqian/faq-relay/internal/interface/http"
)

var faqSet = wire.NewSet(
	provideFAQConfig,
	provideCompletionClient,
	provideTokenCounter,
	provideDocumentSource,
	provideQueryLog,
	provideFAQStore,
	faq.NewDocumentHolder,
	faq.NewResolver,
	faq.NewService,
)

func initializeApp(cfg *config.Config, logger *slog.Logger) (*bootstrap.App, error) {
	wire.Build(
		faqSet,
		provideChatConfig,
		provideAuthConfig,
		chatbot.NewResponder,
		chatbot.NewDispatcher,
		auth.NewService,
		provideGateway,
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}

func initializeAskApp(cfg *config.Config, logger *slog.Logger) (*bootstrap.App, error) {
	wire.Build(
		faqSet,
		provideNoGateway,
		provideNoServer,
		bootstrap.NewApp,
	)
	return nil, nil
}
