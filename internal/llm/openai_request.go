package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const maxStreamLine = 2 * 1024 * 1024

var (
	ssePrefix  = []byte("data: ")
	doneMarker = []byte("[DONE]")
)

func (c *OpenAIClient) doRequest(ctx context.Context, reqBody any) (*http.Response, error) {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("chat API error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}
	// The caller closes the body once it is done reading
	return resp, nil
}

// scanStream reads SSE "data:" lines until [DONE] and hands every non-empty
// content delta to onToken.
func scanStream(r io.Reader, onToken func(string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxStreamLine)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		line = bytes.TrimPrefix(line, ssePrefix)

		if bytes.Equal(line, doneMarker) {
			return nil
		}

		var chatResp ChatResponse
		if err := json.Unmarshal(line, &chatResp); err != nil {
			// Comments and keep-alives
			continue
		}
		if chatResp.Error != nil {
			return fmt.Errorf("chat API error: %s", chatResp.Error.Message)
		}

		if len(chatResp.Choices) == 0 {
			continue
		}

		choice := chatResp.Choices[0]
		var content string
		if choice.Delta != nil {
			content = choice.Delta.Content
		} else if choice.Message != nil {
			content = choice.Message.Content
		}

		if content != "" {
			if err := onToken(content); err != nil {
				return err
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read stream: %w", err)
	}
	return nil
}
