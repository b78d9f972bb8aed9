package domain

import (
	"strings"
	"time"
)

// LegacyRecord представляет одну запись из экспорта легаси-бота.
// Поля могут быть пустыми или искаженными: формат экспорта не гарантирует
// ни наличие канала, ни корректность идентификатора сообщения.
type LegacyRecord struct {
	ID        string `json:"id"`
	Nick      string `json:"nick"`
	Channel   string `json:"channel"`
	MessageID string `json:"messageId"`
	Text      string `json:"text"`
	Time      int64  `json:"time"` // epoch-секунды
}

// ChannelType задает тип канала гильдии.
type ChannelType int

const (
	ChannelText ChannelType = iota
	ChannelStage
	ChannelVoice
	ChannelOther
)

// Channel представляет канал гильдии.
type Channel struct {
	ID   uint64
	Name string
	Type ChannelType
}

// User представляет пользователя платформы.
type User struct {
	ID       uint64
	Username string
	IsBot    bool
}

// Member представляет участника гильдии.
type Member struct {
	User User
	Nick string
}

// Attachment представляет вложение сообщения.
type Attachment struct {
	URL         string
	ContentType string
}

// IsImage сообщает, является ли вложение изображением.
func (a Attachment) IsImage() bool {
	return strings.HasPrefix(a.ContentType, "image/")
}

// Message представляет сообщение, полученное с платформы.
type Message struct {
	ID            uint64
	ChannelID     uint64
	Author        User
	Content       string
	EditedAt      time.Time // нулевое значение: сообщение не редактировалось
	ReplyAuthorID uint64    // 0: сообщение не является ответом
	Attachments   []Attachment
	JumpURL       string
}

// Quote — персистентная сущность цитаты. Name уникален в хранилище.
type Quote struct {
	Name             string    `json:"name"`
	MessageID        uint64    `json:"message_id"`
	ChannelID        uint64    `json:"channel_id"` // 0: канал неизвестен
	CreatedAt        time.Time `json:"created_at"`
	LastEditedAt     time.Time `json:"last_edited_at"`
	QuoterID         uint64    `json:"quoter_id"` // 0: автор цитирования неизвестен
	AuthorID         uint64    `json:"author_id"` // 0: автор неизвестен
	ReplyAuthorID    uint64    `json:"reply_author_id"`
	JumpURL          string    `json:"jump_url,omitempty"` // пустая строка: ссылки нет
	Images           []string  `json:"images"`
	ExtraAttachments int       `json:"extra_attachments"`
	Content          string    `json:"content"`
}

// WithQuoter возвращает копию цитаты с другим автором цитирования.
func (q Quote) WithQuoter(quoterID uint64) Quote {
	q.QuoterID = quoterID
	return q
}

// ResolveFailure классифицирует исход разрешения канала и сообщения
// по легаси-записи. Нулевое значение означает успех.
type ResolveFailure int

const (
	ResolveOK ResolveFailure = iota
	ResolveChannelNameEmpty
	ResolveMessageIDInvalid
	ResolveChannelNotFound
	ResolveMessageNotFound
	ResolveAccessError
)

// Resolution — результат разрешения легаси-записи в живые объекты платформы.
// Channel и Message заполнены только при Failure == ResolveOK.
// MessageID содержит распарсенный идентификатор сообщения; деградированный
// путь (ResolveChannelNameEmpty) сохраняет его в цитате как есть.
type Resolution struct {
	Channel   *Channel
	Message   *Message
	MessageID uint64
	Failure   ResolveFailure
	Err       error // заполняется только при ResolveAccessError
}

// DiagnosticLevel задает уровень диагностического сообщения импорта.
type DiagnosticLevel string

const (
	DiagnosticInfo    DiagnosticLevel = "info"
	DiagnosticWarning DiagnosticLevel = "warning"
)

// Diagnostic — одна человекочитаемая строка отчета об импорте.
type Diagnostic struct {
	Level DiagnosticLevel `json:"level"`
	Text  string          `json:"text"`
}

// ImportSummary — итог одного запуска импорта.
type ImportSummary struct {
	Source   string `json:"source"`
	Imported int    `json:"imported"`
	Total    int    `json:"total"`
}
