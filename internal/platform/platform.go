// Package platform connects the cognition pipeline to a chat service.
package platform

import (
	"context"

	"sambot/internal/agent"
	"sambot/internal/models"
)

// Handler receives every non-bot message the platform delivers, together
// with a conversation handle for answering it.
type Handler interface {
	HandleMessage(ctx context.Context, msg models.Message, conv agent.Conversation)
}
