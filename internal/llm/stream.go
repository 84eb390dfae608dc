package llm

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"

	"github.com/spherical/pdf-assistant/internal/domain"
)

// StreamParser reads the newline-delimited JSON objects of a streamed /api/chat reply.
type StreamParser struct {
	scanner *bufio.Scanner
}

// NewStreamParser creates a new stream parser
func NewStreamParser(reader io.Reader) *StreamParser {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	return &StreamParser{scanner: scanner}
}

// StreamChunk represents a single chunk from the stream
type StreamChunk struct {
	Content string
	Done    bool
}

// Next reads the next chunk from the stream
func (p *StreamParser) Next() (*StreamChunk, error) {
	for p.scanner.Scan() {
		line := strings.TrimSpace(p.scanner.Text())
		if line == "" {
			continue
		}

		var resp ChatResponse
		if err := json.Unmarshal([]byte(line), &resp); err != nil {
			return nil, domain.InferenceError("malformed stream line from language model", err)
		}
		if resp.Error != "" {
			return nil, domain.InferenceError("language model error: "+resp.Error, nil)
		}

		return &StreamChunk{
			Content: resp.Message.Content,
			Done:    resp.Done,
		}, nil
	}

	if err := p.scanner.Err(); err != nil {
		return nil, domain.InferenceError("language model stream interrupted", err)
	}

	return nil, domain.InferenceError("language model stream ended before completion", nil)
}

// Collect reads chunks until the final one, forwarding content to onChunk, and
// returns the concatenated reply.
func (p *StreamParser) Collect(onChunk func(string)) (string, error) {
	var sb strings.Builder
	for {
		chunk, err := p.Next()
		if err != nil {
			return "", err
		}

		if chunk.Content != "" {
			sb.WriteString(chunk.Content)
			if onChunk != nil {
				onChunk(chunk.Content)
			}
		}

		if chunk.Done {
			return sb.String(), nil
		}
	}
}
