package service

import (
	"context"
	"errors"
	"sync"

	apperror "chat-shim/internal/error"
	"chat-shim/internal/llm"

	"go.uber.org/zap"
)

// chatService holds the single chat session of the process: the lazily built
// client and at most one stream cursor. Every caller shares both.
type chatService struct {
	newClient llm.Factory
	policy    CursorPolicy
	logger    *zap.Logger

	clientMu sync.Mutex
	client   llm.Client

	cursorMu sync.Mutex
	cursor   *Cursor
}

// NewChatService creates a session. newClient is not called until the first
// operation needs the client.
func NewChatService(newClient llm.Factory, policy CursorPolicy, logger *zap.Logger) ChatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if policy == "" {
		policy = CursorKeep
	}
	return &chatService{
		newClient: newClient,
		policy:    policy,
		logger:    logger,
	}
}

// ensureClient constructs the client at most once. A failed construction
// leaves it absent so the next call tries again.
func (s *chatService) ensureClient() (llm.Client, error) {
	s.clientMu.Lock()
	defer s.clientMu.Unlock()

	if s.client != nil {
		return s.client, nil
	}

	client, err := s.newClient()
	if err != nil {
		s.logger.Error("Failed to create chat client", zap.Error(err))
		return nil, apperror.NewClientUnavailableError("chat client unavailable", err)
	}

	s.logger.Info("Chat client created")
	s.client = client
	return client, nil
}

// Query returns the client's full answer to text
func (s *chatService) Query(ctx context.Context, text string) (string, error) {
	client, err := s.ensureClient()
	if err != nil {
		return "", err
	}

	answer, err := client.Ask(ctx, text)
	if err != nil {
		return "", apperror.NewUpstreamError("query failed", err)
	}
	return answer, nil
}

// QueryStream returns one chunk per call from the active stream
func (s *chatService) QueryStream(ctx context.Context, text string) (string, bool, error) {
	client, err := s.ensureClient()
	if err != nil {
		return "", false, err
	}

	s.cursorMu.Lock()
	defer s.cursorMu.Unlock()

	if s.cursor != nil && s.cursor.text != text {
		if s.policy == CursorRestart {
			s.logger.Info("Restarting stream for new text",
				zap.Int("abandoned_after_chunks", s.cursor.pulled),
			)
			s.resetCursor()
		} else {
			s.logger.Debug("Ignoring new text while a stream is active",
				zap.Int("pulled", s.cursor.pulled),
			)
		}
	}

	if s.cursor == nil {
		stream, err := client.AskStream(ctx, text)
		if err != nil {
			return "", false, apperror.NewUpstreamError("querystream failed", err)
		}
		s.cursor = newCursor(text, stream)
	}

	chunk, ok, err := s.cursor.Advance(ctx)
	if err != nil {
		// A caller that gave up waiting does not end the stream for the next caller
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			return "", false, err
		}
		s.resetCursor()
		return "", false, apperror.NewUpstreamError("querystream failed", err)
	}
	if !ok {
		s.logger.Debug("Stream exhausted", zap.Int("chunks", s.cursor.pulled))
		s.resetCursor()
		return "", false, nil
	}

	return chunk, true, nil
}

// SwitchToChat forwards id unchanged and returns the client's result unchanged
func (s *chatService) SwitchToChat(ctx context.Context, id string) (string, error) {
	client, err := s.ensureClient()
	if err != nil {
		return "", err
	}

	result, err := client.SwitchConversation(ctx, id)
	if err != nil {
		return "", apperror.NewUpstreamError("switch_to_chat failed", err)
	}
	return result, nil
}

func (s *chatService) Abandon() {
	s.cursorMu.Lock()
	defer s.cursorMu.Unlock()

	if s.cursor == nil {
		return
	}
	s.logger.Info("Abandoning stream", zap.Int("pulled", s.cursor.pulled))
	s.resetCursor()
}

func (s *chatService) Close() error {
	s.cursorMu.Lock()
	defer s.cursorMu.Unlock()

	if s.cursor == nil {
		return nil
	}
	err := s.cursor.close()
	s.cursor = nil
	return err
}

func (s *chatService) resetCursor() {
	if err := s.cursor.close(); err != nil {
		s.logger.Warn("Failed to close stream", zap.Error(err))
	}
	s.cursor = nil
}
