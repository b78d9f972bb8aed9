package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"discord-quote-importer/internal/domain"
	"discord-quote-importer/internal/ports"
)

// UserInferenceService реализует эвристику поиска участника гильдии по
// свободному нику из легаси-записи. Эвристика консультативная: любой исход
// (успех, отсутствие совпадений, ошибка платформы) сопровождается
// диагностической строкой, чтобы человек мог проверить и исправить вывод
// после импорта.
type UserInferenceService struct {
	client ports.GuildClient
	log    *slog.Logger
}

// UserOption — функциональная опция для настройки UserInferenceService.
type UserOption func(*UserInferenceService)

// WithUserLogger устанавливает логгер для сервиса.
func WithUserLogger(l *slog.Logger) UserOption {
	return func(s *UserInferenceService) {
		if l != nil {
			s.log = l
		}
	}
}

// NewUserInference создает новый UserInferenceService.
func NewUserInference(client ports.GuildClient, opts ...UserOption) *UserInferenceService {
	s := &UserInferenceService{
		client: client,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Infer возвращает лучший кандидат на участника по нику или nil. Ник
// нормализуется к нижнему регистру; при пустом результате делается ровно
// одна повторная попытка по первой половине строки — легаси-ники часто
// усечены или имеют суффиксы, и префиксный поиск половинной длины
// восстанавливает многие из них. Принимается первый результат ранжирования
// платформы без дальнейшего разрешения неоднозначности.
func (s *UserInferenceService) Infer(ctx context.Context, rep ports.Reporter, role, nick, recordID string) *domain.Member {
	searchNick := strings.ToLower(nick)

	members, err := s.client.SearchMembers(ctx, searchNick, 1)
	if err != nil {
		s.log.WarnContext(ctx, "Member search failed", "record_id", recordID, "role", role, "nick", nick, "error", err)
		rep.Warn(fmt.Sprintf("⚠️ Couldn't get %s %s for quote %s!", role, nick, recordID))
		return nil
	}

	if len(members) == 0 {
		// Режем по рунам, а не по байтам: ники не обязаны быть ASCII.
		runes := []rune(searchNick)
		searchNick = string(runes[:len(runes)/2])

		members, err = s.client.SearchMembers(ctx, searchNick, 1)
		if err != nil {
			s.log.WarnContext(ctx, "Fallback member search failed", "record_id", recordID, "role", role, "nick", nick, "error", err)
			rep.Warn(fmt.Sprintf("⚠️ Couldn't get %s %s for quote %s!", role, nick, recordID))
			return nil
		}
	}

	if len(members) == 0 {
		rep.Warn(fmt.Sprintf("⚠️ Couldn't get %s %s for quote %s! (user is null)", role, nick, recordID))
		return nil
	}

	member := members[0]
	rep.Info(fmt.Sprintf("🗒️ Quote %s %s inferred as <@%d>", recordID, role, member.User.ID))
	return &member
}
