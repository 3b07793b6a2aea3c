package chatbot

// InboundMessage is a chat message as delivered by the platform gateway.
type InboundMessage struct {
	ID          string
	ChannelID   string
	AuthorID    string
	AuthorIsBot bool
	Content     string
}

// Reply is sent back to the channel the message came from.
type Reply struct {
	ChannelID string
	Content   string
}

// Commands maps the fixed text prefixes to actions.
type Commands struct {
	Ask        string
	FAQ        string
	FAQLiteral string
	Trending   string
}

// Config configures the dispatcher and the free-form responder.
type Config struct {
	Commands    Commands
	Model       string
	Prompt      string
	MaxTokens   int
	Temperature float32
}
