package output

import (
	"context"

	"webshop-env/internal/domain/entity"
)

type LLMPort interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

type ChatRequest struct {
	Messages    []entity.Message
	Temperature float32
	MaxTokens   int
}

type ChatResponse struct {
	Message entity.Message
}
