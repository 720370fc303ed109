package chat

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ragdex/internal/domain"
	"github.com/kailas-cloud/ragdex/internal/domain/session"
)

// NoContextFallback is the canned answer returned when no chunk clears the
// similarity threshold.
const NoContextFallback = "I don't know"

// Answer is the orchestrator's result for one chat turn.
type Answer struct {
	Reply           string
	RetrievedChunks int
}

// Service is the per-request orchestrator: validate, embed, search, build the
// prompt, generate, commit the exchange to session memory. No partial state
// is committed on failure: history mutates only after a successful
// generation, and the fallback path never mutates it at all.
type Service struct {
	retriever Retriever
	generator Generator
	sessions  SessionStore
	logger    *zap.Logger
}

// New creates a chat orchestrator.
func New(retriever Retriever, generator Generator, sessions SessionStore, logger *zap.Logger) *Service {
	return &Service{
		retriever: retriever,
		generator: generator,
		sessions:  sessions,
		logger:    logger,
	}
}

// Chat handles one user message for a session.
func (s *Service) Chat(ctx context.Context, sessionID, message string) (Answer, error) {
	sessionID = strings.TrimSpace(sessionID)
	message = strings.TrimSpace(message)
	if sessionID == "" {
		return Answer{}, domain.ErrSessionIDRequired
	}
	if message == "" {
		return Answer{}, domain.ErrMessageEmpty
	}

	matches, err := s.retriever.Retrieve(ctx, message)
	if err != nil {
		return Answer{}, fmt.Errorf("retrieve context: %w", err)
	}

	// No context cleared the threshold: short-circuit without a generation
	// call and without touching session history.
	if len(matches) == 0 {
		s.logger.Debug("No context above threshold, returning fallback",
			zap.String("session_id", sessionID),
		)
		return Answer{Reply: NoContextFallback, RetrievedChunks: 0}, nil
	}

	history := s.sessions.History(sessionID)
	prompt := BuildPrompt(message, matches, history)

	result, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return Answer{}, fmt.Errorf("generate reply: %w", err)
	}

	reply := strings.TrimSpace(result.Text)
	if reply == "" {
		return Answer{}, fmt.Errorf("generation returned no text: %w", domain.ErrEmptyCompletion)
	}

	userMsg, err := session.NewMessage(session.RoleUser, message)
	if err != nil {
		return Answer{}, fmt.Errorf("build user message: %w", err)
	}
	assistantMsg, err := session.NewMessage(session.RoleAssistant, reply)
	if err != nil {
		return Answer{}, fmt.Errorf("build assistant message: %w", err)
	}
	// One append commits the whole exchange, keeping user-then-assistant
	// adjacent even under concurrent requests on the same session.
	s.sessions.Append(sessionID, userMsg, assistantMsg)

	s.logger.Debug("Chat turn completed",
		zap.String("session_id", sessionID),
		zap.Int("retrieved_chunks", len(matches)),
		zap.Int("prompt_tokens", result.PromptTokens),
		zap.Int("completion_tokens", result.CompletionTokens),
	)

	return Answer{Reply: reply, RetrievedChunks: len(matches)}, nil
}
