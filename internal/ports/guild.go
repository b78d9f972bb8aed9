package ports

import (
	"context"

	"discord-quote-importer/internal/domain"
)

// GuildClient определяет публичный интерфейс клиента чат-платформы в
// пределах одной гильдии. Все вызовы ходят по сети и разделяют один
// rate-limit, поэтому вызывающая сторона обрабатывает записи строго
// последовательно.
type GuildClient interface {
	// Channels возвращает все каналы гильдии.
	Channels(ctx context.Context) ([]domain.Channel, error)
	// Message возвращает сообщение по идентификатору или nil, если его нет.
	Message(ctx context.Context, channelID, messageID uint64) (*domain.Message, error)
	// ReactionUsers возвращает до limit пользователей, поставивших реакцию
	// emoji на сообщение.
	ReactionUsers(ctx context.Context, channelID, messageID uint64, emoji string, limit int) ([]domain.User, error)
	// MessagesAfter возвращает до limit сообщений канала строго после
	// afterID, в хронологическом порядке.
	MessagesAfter(ctx context.Context, channelID, afterID uint64, limit int) ([]domain.Message, error)
	// SearchMembers ищет участников гильдии по подстроке ника и возвращает
	// ранжированный список; первый элемент — лучший кандидат.
	SearchMembers(ctx context.Context, query string, limit int) ([]domain.Member, error)
}
