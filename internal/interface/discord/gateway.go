package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/yanqian/faq-relay/internal/domain/chatbot"
)

const (
	// Discord rejects messages longer than this many characters.
	maxMessageLength = 2000
	handleTimeout    = 2 * time.Minute
)

// Handler is the part of the dispatcher the gateway needs.
type Handler interface {
	Handle(ctx context.Context, msg chatbot.InboundMessage) (chatbot.Reply, bool)
}

// Gateway connects the bot account to Discord and relays command messages to the dispatcher.
type Gateway struct {
	session *discordgo.Session
	handler Handler
	logger  *slog.Logger

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	removes []func()
}

// NewGateway builds a session for the bot token. It does not connect.
func NewGateway(token string, handler Handler, logger *slog.Logger) (*Gateway, error) {
	if token == "" {
		return nil, errors.New("discord token cannot be empty")
	}
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent
	return &Gateway{
		session: session,
		handler: handler,
		logger:  logger.With("component", "discord.gateway"),
	}, nil
}

// Start opens the websocket and begins handling messages. Messages are
// handled until ctx is done or Stop is called.
func (g *Gateway) Start(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cancel != nil {
		return errors.New("discord gateway already started")
	}
	g.ctx, g.cancel = context.WithCancel(ctx)
	g.removes = append(g.removes,
		g.session.AddHandler(g.onReady),
		g.session.AddHandler(g.onMessageCreate),
	)
	if err := g.session.Open(); err != nil {
		g.cancel()
		g.cancel = nil
		return fmt.Errorf("open discord session: %w", err)
	}
	return nil
}

// Stop closes the session and waits for in-flight messages.
func (g *Gateway) Stop() error {
	g.mu.Lock()
	cancel := g.cancel
	removes := g.removes
	g.removes = nil
	g.mu.Unlock()
	if cancel == nil {
		return nil
	}
	for _, remove := range removes {
		remove()
	}
	err := g.session.Close()
	// Cancelling under the lock orders every acquire either before Wait or
	// after the context is done.
	g.mu.Lock()
	cancel()
	g.mu.Unlock()
	g.wg.Wait()
	return err
}

// acquire registers an in-flight message. It fails once the gateway is stopping.
func (g *Gateway) acquire() (context.Context, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ctx == nil || g.ctx.Err() != nil {
		return nil, false
	}
	g.wg.Add(1)
	return g.ctx, true
}

func (g *Gateway) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	if r.User == nil {
		return
	}
	g.logger.Info("discord connected", "user", r.User.Username, "user_id", r.User.ID, "guilds", len(r.Guilds))
}

func (g *Gateway) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	msg, ok := inboundFromEvent(s, m)
	if !ok {
		return
	}
	base, ok := g.acquire()
	if !ok {
		return
	}
	defer g.wg.Done()

	ctx, cancel := context.WithTimeout(base, handleTimeout)
	defer cancel()
	reply, ok := g.handler.Handle(ctx, msg)
	if !ok {
		return
	}
	for _, chunk := range splitMessage(reply.Content, maxMessageLength) {
		if _, err := s.ChannelMessageSend(reply.ChannelID, chunk); err != nil {
			g.logger.Error("failed to send reply", "message_id", msg.ID, "channel_id", reply.ChannelID, "error", err)
			return
		}
	}
}

// inboundFromEvent maps a gateway event; messages from bots, including this one, are dropped.
func inboundFromEvent(s *discordgo.Session, m *discordgo.MessageCreate) (chatbot.InboundMessage, bool) {
	if m == nil || m.Message == nil || m.Author == nil {
		return chatbot.InboundMessage{}, false
	}
	isSelf := s != nil && s.State != nil && s.State.User != nil && m.Author.ID == s.State.User.ID
	return chatbot.InboundMessage{
		ID:          m.ID,
		ChannelID:   m.ChannelID,
		AuthorID:    m.Author.ID,
		AuthorIsBot: m.Author.Bot || isSelf,
		Content:     m.Content,
	}, true
}

// splitMessage cuts text into chunks of at most limit runes, preferring line breaks.
func splitMessage(text string, limit int) []string {
	runes := []rune(text)
	if len(runes) <= limit {
		return []string{text}
	}
	var chunks []string
	for len(runes) > limit {
		cut := limit
		for i := limit - 1; i > limit/2; i-- {
			if runes[i] == '\n' {
				cut = i + 1
				break
			}
		}
		chunks = append(chunks, string(runes[:cut]))
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		chunks = append(chunks, string(runes))
	}
	return chunks
}
