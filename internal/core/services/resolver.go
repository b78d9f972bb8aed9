package services

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"discord-quote-importer/internal/domain"
	"discord-quote-importer/internal/ports"
)

// MessageResolverService реализует стратегию разрешения сообщения: по имени
// канала и идентификатору из легаси-записи находит живые канал и сообщение.
// Сервис не хранит состояние и безопасен для одновременного использования.
type MessageResolverService struct {
	client ports.GuildClient
	log    *slog.Logger
}

// NewMessageResolver создает новый MessageResolverService.
func NewMessageResolver(client ports.GuildClient, opts ...ResolverOption) *MessageResolverService {
	s := &MessageResolverService{
		client: client,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ResolverOption — функциональная опция для настройки MessageResolverService.
type ResolverOption func(*MessageResolverService)

// WithResolverLogger устанавливает логгер для сервиса.
func WithResolverLogger(l *slog.Logger) ResolverOption {
	return func(s *MessageResolverService) {
		if l != nil {
			s.log = l
		}
	}
}

// channelTypeOrder — фиксированный порядок просмотра коллекций каналов.
// Имена каналов не уникальны между типами; легаси-формат всегда выбирал
// первое совпадение именно в этом порядке, и для совместимости порядок
// сохранен как есть.
var channelTypeOrder = []domain.ChannelType{
	domain.ChannelText,
	domain.ChannelStage,
	domain.ChannelVoice,
}

// Resolve разрешает легаси-запись в пару (канал, сообщение) либо
// классифицирует неудачу. Идентификатор сообщения проверяется до имени
// канала: запись с нечитаемым идентификатором не подлежит импорту даже по
// деградированному пути. Пустое имя канала — не ошибка, а маршрут в
// деградированный путь сборки.
func (s *MessageResolverService) Resolve(ctx context.Context, rec domain.LegacyRecord) domain.Resolution {
	messageID, err := strconv.ParseUint(rec.MessageID, 10, 64)
	if err != nil {
		s.log.DebugContext(ctx, "Legacy record has malformed message id", "record_id", rec.ID, "message_id", rec.MessageID)
		return domain.Resolution{Failure: domain.ResolveMessageIDInvalid}
	}

	if strings.TrimSpace(rec.Channel) == "" {
		return domain.Resolution{Failure: domain.ResolveChannelNameEmpty, MessageID: messageID}
	}

	channels, err := s.client.Channels(ctx)
	if err != nil {
		s.log.WarnContext(ctx, "Failed to list guild channels", "record_id", rec.ID, "error", err)
		return domain.Resolution{Failure: domain.ResolveAccessError, MessageID: messageID, Err: err}
	}

	channel := findChannel(channels, rec.Channel)
	if channel == nil {
		return domain.Resolution{Failure: domain.ResolveChannelNotFound, MessageID: messageID}
	}

	msg, err := s.client.Message(ctx, channel.ID, messageID)
	if err != nil {
		s.log.WarnContext(ctx, "Failed to fetch message", "record_id", rec.ID, "channel_id", channel.ID, "message_id", messageID, "error", err)
		return domain.Resolution{Failure: domain.ResolveAccessError, MessageID: messageID, Err: err}
	}
	if msg == nil {
		return domain.Resolution{Failure: domain.ResolveMessageNotFound, MessageID: messageID}
	}

	return domain.Resolution{Channel: channel, Message: msg, MessageID: messageID}
}

// findChannel ищет точное совпадение имени по коллекциям каналов в
// фиксированном порядке типов; внутри типа побеждает первое совпадение.
func findChannel(channels []domain.Channel, name string) *domain.Channel {
	for _, kind := range channelTypeOrder {
		for i := range channels {
			if channels[i].Type == kind && channels[i].Name == name {
				return &channels[i]
			}
		}
	}
	return nil
}
