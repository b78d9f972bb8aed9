package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"discord-quote-importer/internal/domain"
	"discord-quote-importer/internal/ports"
)

// QuoteBuilderService собирает цитату из того, что удалось разрешить.
// Сборщик никогда не завершается ошибкой: каждая дошедшая до него запись
// дает ровно одну цитату, полную или деградированную.
type QuoteBuilderService struct {
	users ports.UserInferrer
}

// NewQuoteBuilder создает новый QuoteBuilderService.
func NewQuoteBuilder(users ports.UserInferrer) *QuoteBuilderService {
	return &QuoteBuilderService{users: users}
}

// FromMessage собирает полную цитату из живого сообщения и вычисленного
// автора цитирования. Время создания берется из легаси-записи, а не из
// сообщения: экспорт фиксирует момент цитирования, не момент отправки.
func (b *QuoteBuilderService) FromMessage(rec domain.LegacyRecord, msg *domain.Message, quoterID uint64) domain.Quote {
	createdAt := time.Unix(rec.Time, 0).UTC()

	lastEditedAt := createdAt
	if !msg.EditedAt.IsZero() {
		lastEditedAt = msg.EditedAt
	}

	var images []string
	extra := 0
	for _, a := range msg.Attachments {
		if a.IsImage() {
			images = append(images, a.URL)
		} else {
			extra++
		}
	}

	return domain.Quote{
		Name:             rec.ID,
		MessageID:        msg.ID,
		ChannelID:        msg.ChannelID,
		CreatedAt:        createdAt,
		LastEditedAt:     lastEditedAt,
		QuoterID:         quoterID,
		AuthorID:         msg.Author.ID,
		ReplyAuthorID:    msg.ReplyAuthorID,
		JumpURL:          msg.JumpURL,
		Images:           images,
		ExtraAttachments: extra,
		Content:          msg.Content,
	}
}

// Degraded собирает деградированную цитату по одним легаси-полям: канал и
// автор цитирования остаются неизвестными, автор восстанавливается
// эвристикой по нику, текст берется дословно из записи. Вместо ссылки на
// сообщение сохраняется сентинел "#<имя канала>", если имя вообще было.
// Деградированный импорт всегда сопровождается предупреждением, чтобы его
// было видно в отчете.
func (b *QuoteBuilderService) Degraded(ctx context.Context, rep ports.Reporter, rec domain.LegacyRecord, messageID uint64) domain.Quote {
	member := b.users.Infer(ctx, rep, "author", rec.Nick, rec.ID)

	rep.Warn(fmt.Sprintf("⚠️ Quote %s imported with potentially missing data!", rec.ID))

	var authorID uint64
	if member != nil {
		authorID = member.User.ID
	}

	jumpURL := ""
	if strings.TrimSpace(rec.Channel) != "" {
		jumpURL = "#" + rec.Channel
	}

	createdAt := time.Unix(rec.Time, 0).UTC()
	return domain.Quote{
		Name:             rec.ID,
		MessageID:        messageID,
		ChannelID:        0,
		CreatedAt:        createdAt,
		LastEditedAt:     createdAt,
		QuoterID:         0,
		AuthorID:         authorID,
		ReplyAuthorID:    0,
		JumpURL:          jumpURL,
		Images:           nil,
		ExtraAttachments: 0,
		Content:          rec.Text,
	}
}
