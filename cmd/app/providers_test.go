package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/faq-relay/internal/infra/config"
	"github.com/yanqian/faq-relay/internal/infra/docsource/file"
	"github.com/yanqian/faq-relay/internal/infra/faqrepo"
	"github.com/yanqian/faq-relay/internal/infra/faqstore"
	"github.com/yanqian/faq-relay/internal/infra/llm/chatgpt"
	"github.com/yanqian/faq-relay/internal/infra/llm/claude"
	"github.com/yanqian/faq-relay/pkg/logger"
)

func TestProvideCompletionClient(t *testing.T) {
	log := logger.Discard()
	cfg := &config.Config{LLM: config.LLMConfig{Provider: config.ProviderOpenAI, Model: "gpt-4o-mini"}}
	require.Nil(t, provideCompletionClient(cfg, log), "missing key yields no client")

	cfg.LLM.APIKey = "sk-test"
	require.IsType(t, &chatgpt.Client{}, provideCompletionClient(cfg, log))

	cfg.LLM.Provider = config.ProviderAnthropic
	cfg.LLM.Model = "claude-3-5-haiku-latest"
	require.IsType(t, &claude.Client{}, provideCompletionClient(cfg, log))
}

func TestProvideDocumentSource(t *testing.T) {
	log := logger.Discard()

	source, err := provideDocumentSource(&config.Config{Document: config.DocumentConfig{Source: config.SourceNone}}, log)
	require.NoError(t, err)
	require.Nil(t, source)

	source, err = provideDocumentSource(&config.Config{Document: config.DocumentConfig{
		Source: config.SourceFile,
		File:   config.FileConfig{Path: "faq.txt"},
	}}, log)
	require.NoError(t, err)
	require.IsType(t, &file.Source{}, source)
}

func TestStoresFallBackToMemory(t *testing.T) {
	log := logger.Discard()
	cfg := &config.Config{FAQ: config.FAQConfig{HistoryLimit: 5}}
	require.IsType(t, &faqstore.MemoryStore{}, provideFAQStore(cfg, log))
	require.IsType(t, &faqrepo.MemoryRepository{}, provideQueryLog(cfg, log))

	cfg.FAQ.Postgres.DSN = "::not a dsn::"
	require.IsType(t, &faqrepo.MemoryRepository{}, provideQueryLog(cfg, log))
}

func TestProvideGateway(t *testing.T) {
	log := logger.Discard()

	gateway, err := provideGateway(&config.Config{}, nil, log)
	require.NoError(t, err)
	require.Nil(t, gateway)

	_, err = provideGateway(&config.Config{Discord: config.DiscordConfig{Enabled: true}}, nil, log)
	require.ErrorContains(t, err, "discord.token")
}

func TestTokenCommandRequiresSubject(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"token"})
	require.ErrorContains(t, cmd.Execute(), "subject")
}

func TestAskCommandRequiresQuestion(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"ask"})
	require.Error(t, cmd.Execute())
}
