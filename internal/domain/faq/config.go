package faq

// Config holds runtime knobs for the FAQ service.
type Config struct {
	Model              string
	Prompt             string
	MaxAnswerTokens    int
	Temperature        float32
	TopRecommendations int
	HistoryLimit       int
}
