package jsonrpc

import (
	"fmt"
	"net/rpc"
	"net/rpc/jsonrpc"
)

// Client calls a running Chat JSON-RPC server.
type Client struct {
	rpc *rpc.Client
}

// Dial connects to a server announced on addr.
func Dial(addr string) (*Client, error) {
	c, err := jsonrpc.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return &Client{rpc: c}, nil
}

func (c *Client) Close() error {
	return c.rpc.Close()
}

func (c *Client) Query(text string) (string, error) {
	var resp QueryResponse
	if err := c.rpc.Call(ServiceName+".Query", QueryRequest{Text: text}, &resp); err != nil {
		return "", err
	}
	return resp.Response, nil
}

// QueryStream returns the next chunk; ok is false once the reply is done.
func (c *Client) QueryStream(text string) (chunk string, ok bool, err error) {
	var resp QueryStreamResponse
	if err := c.rpc.Call(ServiceName+".QueryStream", QueryRequest{Text: text}, &resp); err != nil {
		return "", false, err
	}
	if resp.Chunk == nil {
		return "", false, nil
	}
	return *resp.Chunk, true, nil
}

func (c *Client) SwitchToChat(id string) (string, error) {
	var resp SwitchResponse
	if err := c.rpc.Call(ServiceName+".SwitchToChat", SwitchRequest{ConversationID: id}, &resp); err != nil {
		return "", err
	}
	return resp.Result, nil
}
