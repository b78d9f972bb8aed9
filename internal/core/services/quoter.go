package services

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"discord-quote-importer/internal/domain"
	"discord-quote-importer/internal/ports"
)

const (
	// DefaultMarkerEmoji — эмодзи, которым легаси-бот помечал сообщение
	// как процитированное.
	DefaultMarkerEmoji = "\U0001F4AC"
	// DefaultAnnouncerBotID — идентификатор аккаунта легаси-бота,
	// публиковавшего объявления о новых цитатах.
	DefaultAnnouncerBotID uint64 = 85614143951892480
	// DefaultReactionPageSize ограничивает число просматриваемых реакций.
	DefaultReactionPageSize = 20
	// DefaultHistoryScanLimit ограничивает число сообщений, просматриваемых
	// после целевого в поисках объявления бота.
	DefaultHistoryScanLimit = 40
)

// QuoterInferenceService реализует стратегию определения автора цитирования:
// сначала просматриваются реакции маркер-эмодзи, затем история канала после
// целевого сообщения в поисках объявления легаси-бота. Легаси-система хранила
// атрибуцию только в человекочитаемых объявлениях, поэтому текстовый разбор —
// единственный запасной сигнал.
type QuoterInferenceService struct {
	client ports.GuildClient
	users  ports.UserInferrer
	config QuoterConfig
	log    *slog.Logger
}

// QuoterConfig хранит конфигурацию для QuoterInferenceService.
type QuoterConfig struct {
	MarkerEmoji      string
	AnnouncerBotID   uint64
	ReactionPageSize int
	HistoryScanLimit int
}

// QuoterOption — функциональная опция для настройки QuoterInferenceService.
type QuoterOption func(*QuoterInferenceService)

// WithMarkerEmoji устанавливает маркер-эмодзи.
func WithMarkerEmoji(emoji string) QuoterOption {
	return func(s *QuoterInferenceService) {
		if emoji != "" {
			s.config.MarkerEmoji = emoji
		}
	}
}

// WithAnnouncerBotID устанавливает идентификатор аккаунта легаси-бота.
func WithAnnouncerBotID(id uint64) QuoterOption {
	return func(s *QuoterInferenceService) {
		if id != 0 {
			s.config.AnnouncerBotID = id
		}
	}
}

// WithReactionPageSize устанавливает размер страницы реакций.
func WithReactionPageSize(n int) QuoterOption {
	return func(s *QuoterInferenceService) {
		if n > 0 {
			s.config.ReactionPageSize = n
		}
	}
}

// WithHistoryScanLimit устанавливает глубину просмотра истории канала.
func WithHistoryScanLimit(n int) QuoterOption {
	return func(s *QuoterInferenceService) {
		if n > 0 {
			s.config.HistoryScanLimit = n
		}
	}
}

// WithQuoterLogger устанавливает логгер для сервиса.
func WithQuoterLogger(l *slog.Logger) QuoterOption {
	return func(s *QuoterInferenceService) {
		if l != nil {
			s.log = l
		}
	}
}

// NewQuoterInference создает новый QuoterInferenceService с конфигурацией по
// умолчанию, которую можно переопределить опциями.
func NewQuoterInference(client ports.GuildClient, users ports.UserInferrer, opts ...QuoterOption) *QuoterInferenceService {
	s := &QuoterInferenceService{
		client: client,
		users:  users,
		config: QuoterConfig{
			MarkerEmoji:      DefaultMarkerEmoji,
			AnnouncerBotID:   DefaultAnnouncerBotID,
			ReactionPageSize: DefaultReactionPageSize,
			HistoryScanLimit: DefaultHistoryScanLimit,
		},
		log: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// InferQuoter возвращает лучший кандидат на автора цитирования или 0, если
// определить его не удалось. Реакции — авторитетный сигнал и проверяются
// первыми; текстовый разбор объявления не запускается, когда найден хотя бы
// один не-бот среди реагировавших. Ошибка означает сбой доступа к платформе.
func (s *QuoterInferenceService) InferQuoter(ctx context.Context, rep ports.Reporter, msg *domain.Message, recordID string) (uint64, error) {
	reactors, err := s.client.ReactionUsers(ctx, msg.ChannelID, msg.ID, s.config.MarkerEmoji, s.config.ReactionPageSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list reaction users: %w", err)
	}
	for _, u := range reactors {
		if !u.IsBot {
			s.log.DebugContext(ctx, "Quoter found via marker reaction", "record_id", recordID, "quoter_id", u.ID)
			return u.ID, nil
		}
	}

	history, err := s.client.MessagesAfter(ctx, msg.ChannelID, msg.ID, s.config.HistoryScanLimit)
	if err != nil {
		return 0, fmt.Errorf("failed to scan channel history: %w", err)
	}

	marker := fmt.Sprintf(" as #%s ", recordID)
	for _, m := range history {
		if m.Author.ID != s.config.AnnouncerBotID {
			continue
		}
		if !strings.HasPrefix(m.Content, "New quote added by ") || !strings.Contains(m.Content, marker) {
			continue
		}

		re := regexp.MustCompile("New quote added by (.*?) as #" + regexp.QuoteMeta(recordID) + " ")
		groups := re.FindStringSubmatch(m.Content)
		if len(groups) < 2 {
			continue
		}
		member := s.users.Infer(ctx, rep, "quoter", groups[1], recordID)
		if member != nil {
			s.log.DebugContext(ctx, "Quoter inferred from announcement", "record_id", recordID, "quoter_id", member.User.ID)
			return member.User.ID, nil
		}
		return 0, nil
	}

	return 0, nil
}
