package models

// AssistantRequest is the payload for POST /api/assistant/ask.
type AssistantRequest struct {
	Text string `json:"text" binding:"required"`
}

// AssistantResponse is what the help assistant returns.
type AssistantResponse struct {
	Reply       string   `json:"reply"`
	Intent      string   `json:"intent,omitempty"`
	Topic       string   `json:"topic,omitempty"`
	Confidence  float64  `json:"confidence"`
	Source      string   `json:"source"` // intent, knowledge_base, llm, fallback
	Suggestions []string `json:"suggestions,omitempty"`
	Transcript  string   `json:"transcript,omitempty"`
}

// AssistantContext is the per-member conversation state kept between turns.
type AssistantContext struct {
	LastTopic string `json:"lastTopic"`
	Turns     int    `json:"turns"`
}
