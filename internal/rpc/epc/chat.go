package epc

import (
	"context"

	apperror "chat-shim/internal/error"
	"chat-shim/internal/service"
)

// RegisterChatService exposes the session as query, querystream and
// switch_to_chat.
func RegisterChatService(s *Server, svc service.ChatService) {
	s.Register("query", "(text)", "Return the full reply to TEXT.",
		func(ctx context.Context, args []any) (any, error) {
			text, err := stringArg(args)
			if err != nil {
				return nil, err
			}
			return svc.Query(ctx, text)
		})

	s.Register("querystream", "(text)", "Return the next chunk of the reply to TEXT, or nil when done.",
		func(ctx context.Context, args []any) (any, error) {
			text, err := stringArg(args)
			if err != nil {
				return nil, err
			}
			chunk, ok, err := svc.QueryStream(ctx, text)
			if err != nil || !ok {
				return nil, err
			}
			return chunk, nil
		})

	s.Register("switch_to_chat", "(conversation-id)", "Make CONVERSATION-ID the active conversation.",
		func(ctx context.Context, args []any) (any, error) {
			id, err := stringArg(args)
			if err != nil {
				return nil, err
			}
			return svc.SwitchToChat(ctx, id)
		})
}

// stringArg accepts exactly one argument. nil is read as the empty string.
func stringArg(args []any) (string, error) {
	if len(args) != 1 {
		return "", apperror.NewValidationError("expected exactly one argument", apperror.ErrWrongArity)
	}
	switch v := args[0].(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case Symbol:
		return string(v), nil
	default:
		return "", apperror.NewValidationError("invalid argument", apperror.ErrInvalidArgument)
	}
}
