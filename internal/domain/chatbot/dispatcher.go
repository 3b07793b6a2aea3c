package chatbot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/yanqian/faq-relay/internal/domain/faq"
)

// Default command prefixes.
const (
	DefaultAskCommand        = "!ask"
	DefaultFAQCommand        = "!faq"
	DefaultFAQLiteralCommand = "!faq-literal"
	DefaultTrendingCommand   = "!faqtop"
)

const noTrendingReply = "Nobody has asked the FAQ anything yet."

// Dispatcher routes chat commands to the FAQ service or the free-form responder.
// Every failure is contained in the message that caused it.
type Dispatcher struct {
	commands  Commands
	faqSvc    faq.Service
	responder *Responder
	logger    *slog.Logger
}

// NewDispatcher builds the dispatcher, filling unset command prefixes with defaults.
func NewDispatcher(cfg Config, faqSvc faq.Service, responder *Responder, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		commands:  withDefaults(cfg.Commands),
		faqSvc:    faqSvc,
		responder: responder,
		logger:    logger.With("component", "chatbot.dispatcher"),
	}
}

// Handle processes one message. ok is false when the message needs no reply.
func (d *Dispatcher) Handle(ctx context.Context, msg InboundMessage) (reply Reply, ok bool) {
	if msg.AuthorIsBot {
		return Reply{}, false
	}
	cmd := ParseCommand(msg.Content)
	if cmd.Name == "" {
		return Reply{}, false
	}
	messageID := msg.ID
	if messageID == "" {
		messageID = uuid.NewString()
	}
	logger := d.logger.With("message_id", messageID, "channel_id", msg.ChannelID, "command", cmd.Name)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("message handler panicked", "panic", r)
			reply, ok = Reply{ChannelID: msg.ChannelID, Content: faq.ApologyAnswer}, true
		}
	}()

	var content string
	switch cmd.Name {
	case d.commands.Ask:
		if cmd.Argument == "" {
			content = usage(cmd.Name, "message")
			break
		}
		content = d.responder.Respond(ctx, cmd.Argument)
	case d.commands.FAQ:
		content = d.answer(ctx, logger, cmd, faq.StrategySemantic)
	case d.commands.FAQLiteral:
		content = d.answer(ctx, logger, cmd, faq.StrategyLiteral)
	case d.commands.Trending:
		content = d.trending(ctx, logger)
	default:
		return Reply{}, false
	}
	logger.Debug("command handled", "reply_length", len(content))
	return Reply{ChannelID: msg.ChannelID, Content: content}, true
}

func (d *Dispatcher) answer(ctx context.Context, logger *slog.Logger, cmd Command, strategy faq.Strategy) string {
	if cmd.Argument == "" {
		return usage(cmd.Name, "question")
	}
	resp, err := d.faqSvc.Answer(ctx, faq.Request{Question: cmd.Argument, Strategy: strategy})
	if err != nil {
		logger.Error("faq answer failed", "error", err)
		return faq.ApologyAnswer
	}
	return resp.Answer
}

func (d *Dispatcher) trending(ctx context.Context, logger *slog.Logger) string {
	items, err := d.faqSvc.Trending(ctx)
	if err != nil {
		logger.Error("faq trending failed", "error", err)
		return faq.ApologyAnswer
	}
	if len(items) == 0 {
		return noTrendingReply
	}
	var b strings.Builder
	b.WriteString("Most asked questions:")
	for i, item := range items {
		fmt.Fprintf(&b, "\n%d. %s (%d)", i+1, item.Query, item.Count)
	}
	return b.String()
}

func usage(command, argument string) string {
	return fmt.Sprintf("Usage: %s <%s>", command, argument)
}

func withDefaults(c Commands) Commands {
	if strings.TrimSpace(c.Ask) == "" {
		c.Ask = DefaultAskCommand
	}
	if strings.TrimSpace(c.FAQ) == "" {
		c.FAQ = DefaultFAQCommand
	}
	if strings.TrimSpace(c.FAQLiteral) == "" {
		c.FAQLiteral = DefaultFAQLiteralCommand
	}
	if strings.TrimSpace(c.Trending) == "" {
		c.Trending = DefaultTrendingCommand
	}
	return c
}
