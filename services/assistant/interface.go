package assistant

import (
	"context"

	"servswap/models"
)

type AssistantService interface {
	Ask(ctx context.Context, userID, text string) (*models.AssistantResponse, error)
	// AskVoice transcribes a LINEAR16 WAV recording and answers it like Ask.
	AskVoice(ctx context.Context, userID string, wav []byte, language string) (*models.AssistantResponse, error)
}

// ContextStore keeps per-member conversation state between questions.
type ContextStore interface {
	Get(ctx context.Context, userID string) (*models.AssistantContext, error)
	Set(ctx context.Context, userID string, c *models.AssistantContext) error
}

// Generator answers free-form prompts. *GeminiClient is the production one.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Transcriber turns speech into text. *SpeechTranscriber is the production one.
type Transcriber interface {
	Transcribe(ctx context.Context, wav []byte, language string) (string, error)
}

type DefaultAssistantService struct {
	KB       []Entry
	Contexts ContextStore
	// LLM answers questions the knowledge base cannot; nil disables it.
	LLM Generator
	// Speech is nil when voice questions are disabled.
	Speech Transcriber
}

// NewDefaultAssistantService wires the built-in knowledge base.
func NewDefaultAssistantService(store ContextStore, llm Generator, speech Transcriber) *DefaultAssistantService {
	return &DefaultAssistantService{
		KB:       KnowledgeBase(),
		Contexts: store,
		LLM:      llm,
		Speech:   speech,
	}
}
