package metrics

// TokenUsage captures LLM token counts used to satisfy a request.
type TokenUsage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens,omitempty"`
	TotalTokens      int `json:"totalTokens"`
}

// IsZero reports whether usage data is absent.
func (u TokenUsage) IsZero() bool {
	return u.PromptTokens == 0 && u.CompletionTokens == 0 && u.TotalTokens == 0
}

// WithEstimatedPrompt fills PromptTokens from a local estimate when the provider reported none.
func (u TokenUsage) WithEstimatedPrompt(estimate int) TokenUsage {
	if u.PromptTokens > 0 || estimate <= 0 {
		return u
	}
	u.PromptTokens = estimate
	u.TotalTokens = estimate + u.CompletionTokens
	return u
}
