package assistant

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"servswap/models"
	"servswap/services/apperr"
	"servswap/utils"

	"go.uber.org/zap"
)

const (
	// MatchThreshold is the lowest Jaccard score answered from the knowledge base.
	MatchThreshold = 0.1
	maxQuestion    = 1000
	maxSuggestions = 3
)

// Response sources.
const (
	SourceIntent        = "intent"
	SourceKnowledgeBase = "knowledge_base"
	SourceLLM           = "llm"
	SourceFallback      = "fallback"
)

const fallbackReply = "I'm not sure about that one yet. Here are some topics I can help with."

type scored struct {
	entry Entry
	score float64
}

// rank scores every entry against tokens, best first. Equal scores keep knowledge-base order.
func (s *DefaultAssistantService) rank(tokens map[string]bool) []scored {
	out := make([]scored, 0, len(s.KB))
	for _, e := range s.KB {
		out = append(out, scored{entry: e, score: Jaccard(tokens, e.keywordSet())})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].score > out[j].score })
	return out
}

func (s *DefaultAssistantService) entry(id string) (Entry, bool) {
	for _, e := range s.KB {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

func (s *DefaultAssistantService) loadContext(ctx context.Context, userID string) *models.AssistantContext {
	if s.Contexts == nil {
		return &models.AssistantContext{}
	}
	c, err := s.Contexts.Get(ctx, userID)
	if err != nil || c == nil {
		if err != nil {
			utils.GetLogger().Warn("assistant context read failed", zap.String("userID", userID), zap.Error(err))
		}
		return &models.AssistantContext{}
	}
	return c
}

func (s *DefaultAssistantService) saveContext(ctx context.Context, userID string, c *models.AssistantContext) {
	if s.Contexts == nil {
		return
	}
	if err := s.Contexts.Set(ctx, userID, c); err != nil {
		utils.GetLogger().Warn("assistant context write failed", zap.String("userID", userID), zap.Error(err))
	}
}

func (s *DefaultAssistantService) Ask(ctx context.Context, userID, text string) (*models.AssistantResponse, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperr.Invalid("ask a question")
	}
	if utf8.RuneCountInString(text) > maxQuestion {
		return nil, apperr.Invalid("questions must be at most %d characters", maxQuestion)
	}

	convo := s.loadContext(ctx, userID)
	convo.Turns++
	defer s.saveContext(ctx, userID, convo)

	if followUp.MatchString(text) && convo.LastTopic != "" {
		if e, ok := s.entry(convo.LastTopic); ok {
			return &models.AssistantResponse{
				Reply:      e.FollowUp,
				Intent:     "follow_up",
				Topic:      e.ID,
				Confidence: 1,
				Source:     SourceKnowledgeBase,
			}, nil
		}
	}

	if in, ok := matchIntent(text); ok {
		return &models.AssistantResponse{
			Reply:      in.reply,
			Intent:     in.name,
			Confidence: 1,
			Source:     SourceIntent,
		}, nil
	}

	ranked := s.rank(Tokenize(text))
	if len(ranked) > 0 && ranked[0].score >= MatchThreshold {
		best := ranked[0]
		convo.LastTopic = best.entry.ID
		return &models.AssistantResponse{
			Reply:      best.entry.Answer,
			Intent:     "question",
			Topic:      best.entry.ID,
			Confidence: best.score,
			Source:     SourceKnowledgeBase,
		}, nil
	}

	var bestScore float64
	if len(ranked) > 0 {
		bestScore = ranked[0].score
	}
	if s.LLM != nil {
		reply, err := s.LLM.GenerateContent(ctx, s.prompt(text))
		if err == nil && strings.TrimSpace(reply) != "" {
			return &models.AssistantResponse{
				Reply:      strings.TrimSpace(reply),
				Intent:     "question",
				Confidence: bestScore,
				Source:     SourceLLM,
			}, nil
		}
		utils.GetLogger().Warn("assistant LLM fallback failed", zap.String("userID", userID), zap.Error(err))
	}

	return &models.AssistantResponse{
		Reply:       fallbackReply,
		Intent:      "unknown",
		Confidence:  bestScore,
		Source:      SourceFallback,
		Suggestions: suggestions(ranked),
	}, nil
}

// suggestions lists up to three topic titles, closest first.
func suggestions(ranked []scored) []string {
	out := []string{}
	for _, r := range ranked {
		if len(out) == maxSuggestions {
			break
		}
		out = append(out, r.entry.Title)
	}
	return out
}

func (s *DefaultAssistantService) prompt(question string) string {
	var sb strings.Builder
	sb.WriteString("You are the help assistant of ServSwap, a community where members trade services instead of money. ")
	sb.WriteString("Answer in at most three sentences using only the facts below. If they do not cover the question, say so and suggest contacting support.\n\n")
	for _, e := range s.KB {
		fmt.Fprintf(&sb, "- %s: %s %s\n", e.Title, e.Answer, e.FollowUp)
	}
	fmt.Fprintf(&sb, "\nQuestion: %s\n", question)
	return sb.String()
}
