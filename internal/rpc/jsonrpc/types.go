package jsonrpc

// QueryRequest carries the text for Query and QueryStream.
type QueryRequest struct {
	Text string `json:"text"`
}

type QueryResponse struct {
	Response string `json:"response"`
}

// QueryStreamResponse carries one chunk; Chunk is null once the reply is done.
type QueryStreamResponse struct {
	Chunk *string `json:"chunk"`
}

type SwitchRequest struct {
	ConversationID string `json:"conversation_id"`
}

type SwitchResponse struct {
	Result string `json:"result"`
}
