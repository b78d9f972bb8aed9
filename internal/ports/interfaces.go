package ports

import (
	"context"

	"discord-quote-importer/internal/domain"
)

// DataSource определяет интерфейс для получения исходных данных экспорта.
type DataSource interface {
	// Fetch загружает данные из источника и возвращает их в виде байтового среза.
	Fetch() ([]byte, error)
}

// Parser определяет интерфейс для парсинга данных экспорта.
type Parser interface {
	// Parse преобразует сырые данные в последовательность легаси-записей.
	Parse(data []byte) ([]domain.LegacyRecord, error)
}

// Reporter принимает прогресс и диагностику одного запуска импорта.
// Progress перезаписывает текущую строку состояния; Info и Warn добавляют
// терминальные диагностические строки к отчету.
type Reporter interface {
	Progress(text string)
	Info(text string)
	Warn(text string)
}

// MessageResolver определяет интерфейс стратегии разрешения сообщения (канал
// и сообщение по имени канала и идентификатору из легаси-записи).
type MessageResolver interface {
	Resolve(ctx context.Context, rec domain.LegacyRecord) domain.Resolution
}

// QuoterInferrer определяет интерфейс стратегии определения автора цитирования.
// Возвращает 0, если автор цитирования не найден (это не ошибка); ошибка
// означает сбой доступа к платформе, и запись считается неимпортированной.
type QuoterInferrer interface {
	InferQuoter(ctx context.Context, rep Reporter, msg *domain.Message, recordID string) (uint64, error)
}

// UserInferrer определяет интерфейс эвристики поиска участника по нику.
// Никогда не возвращает ошибку: любой сбой деградирует до nil плюс
// диагностическая строка.
type UserInferrer interface {
	Infer(ctx context.Context, rep Reporter, role, nick, recordID string) *domain.Member
}

// QuoteBuilder собирает цитату из того, что удалось разрешить.
type QuoteBuilder interface {
	// FromMessage собирает полную цитату из живого сообщения.
	FromMessage(rec domain.LegacyRecord, msg *domain.Message, quoterID uint64) domain.Quote
	// Degraded собирает деградированную цитату по одним легаси-полям.
	Degraded(ctx context.Context, rep Reporter, rec domain.LegacyRecord, messageID uint64) domain.Quote
}

// QuoteStore определяет интерфейс персистентного хранилища цитат.
// Add и Remove накапливают изменения в памяти; Save фиксирует их одной
// транзакцией и либо применяет все, либо ничего.
type QuoteStore interface {
	Add(q domain.Quote)
	Remove(name string)
	Save(ctx context.Context) error
	// Quote возвращает цитату по имени или nil, если ее нет.
	Quote(ctx context.Context, name string) (*domain.Quote, error)
	// SetQuoter переатрибутирует сохраненную цитату. Изменение применяется
	// немедленно собственной транзакцией и не затрагивает накопленный
	// буфер мутаций: идущий параллельно импорт не будет зафиксирован
	// досрочно. Ошибка возвращается и когда цитаты с таким именем нет.
	SetQuoter(ctx context.Context, name string, quoterID uint64) error
}

// Exporter определяет интерфейс для вывода итогового отчета импорта.
type Exporter interface {
	Export(summary domain.ImportSummary, diags []domain.Diagnostic) error
}
