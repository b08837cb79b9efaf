package jsonrpc

import (
	"context"

	apperror "chat-shim/internal/error"
	"chat-shim/internal/service"

	"go.uber.org/zap"
)

// chatReceiver is the net/rpc receiver. net/rpc methods carry no context, so
// calls run under the server's lifetime context. Client failures reach the
// caller with the client's own message.
type chatReceiver struct {
	svc    service.ChatService
	ctx    context.Context
	logger *zap.Logger
}

func (r *chatReceiver) Query(req QueryRequest, resp *QueryResponse) error {
	answer, err := r.svc.Query(r.ctx, req.Text)
	if err != nil {
		r.logger.Error("query failed", zap.Error(err))
		return apperror.Cause(err)
	}
	resp.Response = answer
	return nil
}

func (r *chatReceiver) QueryStream(req QueryRequest, resp *QueryStreamResponse) error {
	chunk, ok, err := r.svc.QueryStream(r.ctx, req.Text)
	if err != nil {
		r.logger.Error("querystream failed", zap.Error(err))
		return apperror.Cause(err)
	}
	if ok {
		resp.Chunk = &chunk
	}
	return nil
}

func (r *chatReceiver) SwitchToChat(req SwitchRequest, resp *SwitchResponse) error {
	result, err := r.svc.SwitchToChat(r.ctx, req.ConversationID)
	if err != nil {
		r.logger.Error("switch_to_chat failed", zap.Error(err))
		return apperror.Cause(err)
	}
	resp.Result = result
	return nil
}
