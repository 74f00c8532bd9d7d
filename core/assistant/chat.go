package assistant

import (
	"context"
	"errors"
	"fmt"

	"github.com/adalundhe/metra/core/providers"
)

// ErrNoProvider indicates chat was requested without an LLM configured.
// All deterministic operations remain available through the CLI.
var ErrNoProvider = errors.New("no llm provider configured")

const systemPrompt = `你是ReadingTypeID智能编码助手，帮助用户生成、搜索和管理符合
IEC61968-9标准的ReadingType编码。编码由16个数字字段用'-'连接而成。
所有编码的生成、验证和检索都必须通过提供的工具完成，不要自行推算编码。
用中文回答，简洁、准确。`

// maxToolRounds bounds the tool-call loop per user turn.
const maxToolRounds = 4

// ChatSession is one conversation: history plus the wired assistant.
type ChatSession struct {
	assistant *Assistant
	provider  providers.Provider
	messages  []providers.Message
}

// NewChatSession starts a conversation. Fails when no provider is wired.
func (a *Assistant) NewChatSession() (*ChatSession, error) {
	if a.provider == nil {
		return nil, ErrNoProvider
	}
	return &ChatSession{assistant: a, provider: a.provider}, nil
}

// Send submits user input, resolves any tool calls against the
// deterministic core, and streams the final answer text to onText.
func (s *ChatSession) Send(ctx context.Context, input string, onText func(string)) (string, error) {
	s.messages = append(s.messages, providers.Message{
		Role:    providers.RoleUser,
		Content: input,
	})

	for round := 0; round < maxToolRounds; round++ {
		req := &providers.Request{
			Messages:     s.messages,
			SystemPrompt: systemPrompt,
			Tools:        Tools(),
		}

		resp, err := s.provider.Complete(ctx, req)
		if err != nil {
			return "", fmt.Errorf("chat completion: %w", err)
		}

		if len(resp.ToolCalls) == 0 {
			s.messages = append(s.messages, providers.Message{
				Role:    providers.RoleAssistant,
				Content: resp.Content,
			})
			if onText != nil && resp.Content != "" {
				onText(resp.Content)
			}
			return resp.Content, nil
		}

		s.messages = append(s.messages, providers.Message{
			Role:      providers.RoleAssistant,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})
		for _, call := range resp.ToolCalls {
			result := s.assistant.DispatchTool(ctx, call)
			s.messages = append(s.messages, providers.Message{
				Role:       providers.RoleTool,
				Content:    result,
				ToolCallID: call.ID,
			})
		}
	}

	// Tool rounds exhausted; stream a closing answer without tools.
	resp, err := providers.StreamWithCallback(ctx, s.provider, &providers.Request{
		Messages:     s.messages,
		SystemPrompt: systemPrompt,
	}, onText)
	if err != nil {
		return "", fmt.Errorf("chat stream: %w", err)
	}

	s.messages = append(s.messages, providers.Message{
		Role:    providers.RoleAssistant,
		Content: resp.Content,
	})
	return resp.Content, nil
}

// History returns a copy of the conversation so far.
func (s *ChatSession) History() []providers.Message {
	return append([]providers.Message(nil), s.messages...)
}

// Clear resets the conversation.
func (s *ChatSession) Clear() {
	s.messages = nil
}
