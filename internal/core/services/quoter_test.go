package services

import (
	"context"
	"errors"
	"testing"

	"discord-quote-importer/internal/domain"
	"discord-quote-importer/internal/ports"
)

func TestQuoterInference(t *testing.T) {
	ctx := context.Background()

	msg := &domain.Message{ID: 500, ChannelID: 10}

	t.Run("Первый не-бот среди реакций побеждает", func(t *testing.T) {
		client := &MockGuildClient{
			ReactionUsersFunc: func(ctx context.Context, channelID, messageID uint64, emoji string, limit int) ([]domain.User, error) {
				if emoji != DefaultMarkerEmoji {
					t.Errorf("Ожидался маркер-эмодзи по умолчанию, получено '%s'", emoji)
				}
				if limit != DefaultReactionPageSize {
					t.Errorf("Ожидался размер страницы %d, получено %d", DefaultReactionPageSize, limit)
				}
				return []domain.User{
					{ID: 1, IsBot: true},
					{ID: 2, IsBot: false},
					{ID: 3, IsBot: false},
				}, nil
			},
			MessagesAfterFunc: func(ctx context.Context, channelID, afterID uint64, limit int) ([]domain.Message, error) {
				t.Error("История канала не должна просматриваться при найденной реакции")
				return nil, nil
			},
		}
		svc := NewQuoterInference(client, &MockUserInferrer{})

		quoterID, err := svc.InferQuoter(ctx, &RecordingReporter{}, msg, "42")

		if err != nil {
			t.Fatalf("Неожиданная ошибка: %v", err)
		}
		if quoterID != 2 {
			t.Errorf("Ожидался quoterID 2, получено %d", quoterID)
		}
	})

	t.Run("Объявление бота дает автора цитирования", func(t *testing.T) {
		client := &MockGuildClient{
			MessagesAfterFunc: func(ctx context.Context, channelID, afterID uint64, limit int) ([]domain.Message, error) {
				if afterID != msg.ID {
					t.Errorf("Ожидался просмотр истории после %d, получено %d", msg.ID, afterID)
				}
				if limit != DefaultHistoryScanLimit {
					t.Errorf("Ожидался лимит %d, получено %d", DefaultHistoryScanLimit, limit)
				}
				return []domain.Message{
					{ID: 501, Author: domain.User{ID: 999}, Content: "New quote added by intruder as #42 "},
					{ID: 502, Author: domain.User{ID: DefaultAnnouncerBotID}, Content: "unrelated announcement"},
					{ID: 503, Author: domain.User{ID: DefaultAnnouncerBotID}, Content: "New quote added by someUser as #42 (1337 quotes total)"},
				}, nil
			},
		}
		users := &MockUserInferrer{
			InferFunc: func(ctx context.Context, rep ports.Reporter, role, nick, recordID string) *domain.Member {
				if role != "quoter" {
					t.Errorf("Ожидалась роль 'quoter', получено '%s'", role)
				}
				if nick != "someUser" {
					t.Errorf("Ожидался ник 'someUser', получено '%s'", nick)
				}
				return &domain.Member{User: domain.User{ID: 77}}
			},
		}
		svc := NewQuoterInference(client, users)

		quoterID, err := svc.InferQuoter(ctx, &RecordingReporter{}, msg, "42")

		if err != nil {
			t.Fatalf("Неожиданная ошибка: %v", err)
		}
		if quoterID != 77 {
			t.Errorf("Ожидался quoterID 77, получено %d", quoterID)
		}
	})

	t.Run("Объявление про другую цитату пропускается", func(t *testing.T) {
		client := &MockGuildClient{
			MessagesAfterFunc: func(ctx context.Context, channelID, afterID uint64, limit int) ([]domain.Message, error) {
				return []domain.Message{
					{ID: 501, Author: domain.User{ID: DefaultAnnouncerBotID}, Content: "New quote added by someUser as #420 "},
				}, nil
			},
		}
		svc := NewQuoterInference(client, &MockUserInferrer{})

		quoterID, err := svc.InferQuoter(ctx, &RecordingReporter{}, msg, "42")

		if err != nil {
			t.Fatalf("Неожиданная ошибка: %v", err)
		}
		if quoterID != 0 {
			t.Errorf("Ожидался quoterID 0, получено %d", quoterID)
		}
	})

	t.Run("Реакции одних ботов не дают атрибуции", func(t *testing.T) {
		client := &MockGuildClient{
			ReactionUsersFunc: func(ctx context.Context, channelID, messageID uint64, emoji string, limit int) ([]domain.User, error) {
				return []domain.User{{ID: 1, IsBot: true}}, nil
			},
		}
		svc := NewQuoterInference(client, &MockUserInferrer{})

		quoterID, err := svc.InferQuoter(ctx, &RecordingReporter{}, msg, "42")

		if err != nil {
			t.Fatalf("Неожиданная ошибка: %v", err)
		}
		if quoterID != 0 {
			t.Errorf("Ожидался quoterID 0, получено %d", quoterID)
		}
	})

	t.Run("Ошибка чтения реакций возвращается вызывающему", func(t *testing.T) {
		client := &MockGuildClient{
			ReactionUsersFunc: func(ctx context.Context, channelID, messageID uint64, emoji string, limit int) ([]domain.User, error) {
				return nil, errors.New("api unavailable")
			},
		}
		svc := NewQuoterInference(client, &MockUserInferrer{})

		_, err := svc.InferQuoter(ctx, &RecordingReporter{}, msg, "42")

		if err == nil {
			t.Error("Ожидалась ошибка доступа к платформе")
		}
	})

	t.Run("Ошибка просмотра истории возвращается вызывающему", func(t *testing.T) {
		client := &MockGuildClient{
			MessagesAfterFunc: func(ctx context.Context, channelID, afterID uint64, limit int) ([]domain.Message, error) {
				return nil, errors.New("missing access")
			},
		}
		svc := NewQuoterInference(client, &MockUserInferrer{})

		_, err := svc.InferQuoter(ctx, &RecordingReporter{}, msg, "42")

		if err == nil {
			t.Error("Ожидалась ошибка доступа к платформе")
		}
	})

	t.Run("Опции переопределяют конфигурацию", func(t *testing.T) {
		var gotEmoji string
		var gotLimit int
		client := &MockGuildClient{
			ReactionUsersFunc: func(ctx context.Context, channelID, messageID uint64, emoji string, limit int) ([]domain.User, error) {
				gotEmoji = emoji
				gotLimit = limit
				return []domain.User{{ID: 5}}, nil
			},
		}
		svc := NewQuoterInference(client, &MockUserInferrer{},
			WithMarkerEmoji("🔖"),
			WithReactionPageSize(7),
		)

		_, err := svc.InferQuoter(ctx, &RecordingReporter{}, msg, "42")

		if err != nil {
			t.Fatalf("Неожиданная ошибка: %v", err)
		}
		if gotEmoji != "🔖" {
			t.Errorf("Ожидался эмодзи '🔖', получено '%s'", gotEmoji)
		}
		if gotLimit != 7 {
			t.Errorf("Ожидался лимит 7, получено %d", gotLimit)
		}
	})
}
