package providers

import (
	"context"
	"strings"
	"sync"
	"time"
)

// StreamChunk is a single streaming event.
type StreamChunk struct {
	Index      int             `json:"index"`
	Text       string          `json:"text"`
	Type       StreamChunkType `json:"type"`
	ToolCall   *ToolCallChunk  `json:"tool_call,omitempty"`
	Usage      *Usage          `json:"usage,omitempty"`
	StopReason StopReason      `json:"stop_reason,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
}

// StreamChunkType identifies what kind of content the chunk carries.
type StreamChunkType string

const (
	ChunkTypeText      StreamChunkType = "text"
	ChunkTypeToolStart StreamChunkType = "tool_start"
	ChunkTypeToolDelta StreamChunkType = "tool_delta"
	ChunkTypeToolEnd   StreamChunkType = "tool_end"
	ChunkTypeStart     StreamChunkType = "start"
	ChunkTypeEnd       StreamChunkType = "end"
	ChunkTypeError     StreamChunkType = "error"
)

// ToolCallChunk carries incremental tool call data.
type ToolCallChunk struct {
	ID             string `json:"id,omitempty"`
	Name           string `json:"name,omitempty"`
	ArgumentsDelta string `json:"arguments_delta,omitempty"`
}

// StreamAccumulator collects streaming chunks into a complete response.
type StreamAccumulator struct {
	mu sync.Mutex

	chunkCount int
	text       strings.Builder
	toolCalls  []*accumulatedToolCall
	usage      Usage
	stopReason StopReason
}

type accumulatedToolCall struct {
	id        string
	name      string
	arguments strings.Builder
}

// NewStreamAccumulator creates an empty accumulator.
func NewStreamAccumulator() *StreamAccumulator {
	return &StreamAccumulator{}
}

// Add accumulates one chunk. Tool call order is preserved.
func (a *StreamAccumulator) Add(chunk *StreamChunk) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.chunkCount++

	switch chunk.Type {
	case ChunkTypeText:
		a.text.WriteString(chunk.Text)

	case ChunkTypeToolStart:
		if chunk.ToolCall != nil {
			a.toolCalls = append(a.toolCalls, &accumulatedToolCall{
				id:   chunk.ToolCall.ID,
				name: chunk.ToolCall.Name,
			})
		}

	case ChunkTypeToolDelta:
		if chunk.ToolCall != nil {
			if tc := a.findToolCall(chunk.ToolCall.ID); tc != nil {
				tc.arguments.WriteString(chunk.ToolCall.ArgumentsDelta)
			}
		}

	case ChunkTypeEnd:
		if chunk.Usage != nil {
			a.usage = *chunk.Usage
		}
		if chunk.StopReason != "" {
			a.stopReason = chunk.StopReason
		}
	}
}

func (a *StreamAccumulator) findToolCall(id string) *accumulatedToolCall {
	for _, tc := range a.toolCalls {
		if tc.id == id {
			return tc
		}
	}
	return nil
}

// Handler returns a StreamHandler that feeds this accumulator.
func (a *StreamAccumulator) Handler() StreamHandler {
	return func(chunk *StreamChunk) error {
		a.Add(chunk)
		return nil
	}
}

// Response builds the final response from accumulated chunks.
func (a *StreamAccumulator) Response() *Response {
	a.mu.Lock()
	defer a.mu.Unlock()

	var toolCalls []ToolCall
	for _, tc := range a.toolCalls {
		toolCalls = append(toolCalls, ToolCall{
			ID:        tc.id,
			Name:      tc.name,
			Arguments: tc.arguments.String(),
		})
	}

	return &Response{
		Content:    a.text.String(),
		StopReason: a.stopReason,
		Usage:      a.usage,
		ToolCalls:  toolCalls,
	}
}

// Text returns the accumulated text so far.
func (a *StreamAccumulator) Text() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.text.String()
}

// ChunkCount returns the number of chunks received.
func (a *StreamAccumulator) ChunkCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.chunkCount
}

// StreamWithCallback streams a request, forwarding text deltas to onText,
// and returns the complete accumulated response.
func StreamWithCallback(
	ctx context.Context,
	provider Provider,
	req *Request,
	onText func(text string),
) (*Response, error) {
	acc := NewStreamAccumulator()

	err := provider.Stream(ctx, req, func(chunk *StreamChunk) error {
		acc.Add(chunk)
		if chunk.Type == ChunkTypeText && onText != nil {
			onText(chunk.Text)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return acc.Response(), nil
}
