// Package storage реализует персистентное хранилище цитат на SQLite.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"discord-quote-importer/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS quotes (
    name              TEXT PRIMARY KEY,
    message_id        INTEGER NOT NULL,
    channel_id        INTEGER NOT NULL DEFAULT 0,
    created_at        INTEGER NOT NULL,
    last_edited_at    INTEGER NOT NULL,
    quoter_id         INTEGER NOT NULL DEFAULT 0,
    author_id         INTEGER NOT NULL DEFAULT 0,
    reply_author_id   INTEGER NOT NULL DEFAULT 0,
    jump_url          TEXT,
    images            TEXT NOT NULL DEFAULT '[]',
    extra_attachments INTEGER NOT NULL DEFAULT 0,
    content           TEXT NOT NULL DEFAULT ''
);
`

// SQLiteStore — хранилище цитат поверх SQLite. Мутации Add и Remove
// накапливаются в памяти; Save фиксирует их одной транзакцией, целиком или
// никак. Это единственная транзакционная граница импорта.
type SQLiteStore struct {
	db  *sql.DB
	log *slog.Logger

	mu      sync.Mutex
	adds    []domain.Quote
	removes []string
}

// New открывает (и при необходимости создает) базу по указанному пути.
func New(path string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{db: db, log: logger}, nil
}

// Close закрывает соединение с базой.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Add ставит цитату в очередь на запись.
func (s *SQLiteStore) Add(q domain.Quote) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.adds = append(s.adds, q)
}

// Remove ставит удаление цитаты по имени в очередь.
func (s *SQLiteStore) Remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removes = append(s.removes, name)
}

// Save применяет накопленные мутации одной транзакцией. Запись с
// конфликтующим именем замещается через удаление и вставку, так что
// инвариант "не более одной записи на имя" сохраняется. При ошибке буфер
// остается нетронутым и Save можно повторить.
func (s *SQLiteStore) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.adds) == 0 && len(s.removes) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, name := range s.removes {
		if _, err := tx.ExecContext(ctx, "DELETE FROM quotes WHERE name = ?", name); err != nil {
			return fmt.Errorf("failed to delete quote %q: %w", name, err)
		}
	}

	for _, q := range s.adds {
		if _, err := tx.ExecContext(ctx, "DELETE FROM quotes WHERE name = ?", q.Name); err != nil {
			return fmt.Errorf("failed to replace quote %q: %w", q.Name, err)
		}

		images, err := json.Marshal(q.Images)
		if err != nil {
			return fmt.Errorf("failed to encode images for quote %q: %w", q.Name, err)
		}

		var jumpURL any
		if q.JumpURL != "" {
			jumpURL = q.JumpURL
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO quotes (name, message_id, channel_id, created_at, last_edited_at,
			                    quoter_id, author_id, reply_author_id, jump_url, images,
			                    extra_attachments, content)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, q.Name, int64(q.MessageID), int64(q.ChannelID), q.CreatedAt.Unix(), q.LastEditedAt.Unix(),
			int64(q.QuoterID), int64(q.AuthorID), int64(q.ReplyAuthorID), jumpURL, string(images),
			q.ExtraAttachments, q.Content)
		if err != nil {
			return fmt.Errorf("failed to insert quote %q: %w", q.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.log.Debug("Quote batch persisted", "added", len(s.adds), "removed", len(s.removes))
	s.adds = nil
	s.removes = nil
	return nil
}

// SetQuoter переатрибутирует сохраненную цитату. Обновление выполняется
// одним оператором в обход буфера мутаций: Add и Remove идущего параллельно
// импорта остаются незафиксированными до его собственного Save.
func (s *SQLiteStore) SetQuoter(ctx context.Context, name string, quoterID uint64) error {
	res, err := s.db.ExecContext(ctx, "UPDATE quotes SET quoter_id = ? WHERE name = ?", int64(quoterID), name)
	if err != nil {
		return fmt.Errorf("failed to update quoter for quote %q: %w", name, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result for quote %q: %w", name, err)
	}
	if affected == 0 {
		return fmt.Errorf("quote %q not found", name)
	}

	return nil
}

// Quote возвращает цитату по имени или nil, если ее нет.
func (s *SQLiteStore) Quote(ctx context.Context, name string) (*domain.Quote, error) {
	var (
		q          domain.Quote
		messageID  int64
		channelID  int64
		createdAt  int64
		editedAt   int64
		quoterID   int64
		authorID   int64
		replyID    int64
		jumpURL    sql.NullString
		imagesJSON string
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT name, message_id, channel_id, created_at, last_edited_at,
		       quoter_id, author_id, reply_author_id, jump_url, images,
		       extra_attachments, content
		FROM quotes WHERE name = ?
	`, name).Scan(&q.Name, &messageID, &channelID, &createdAt, &editedAt,
		&quoterID, &authorID, &replyID, &jumpURL, &imagesJSON,
		&q.ExtraAttachments, &q.Content)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query quote %q: %w", name, err)
	}

	q.MessageID = uint64(messageID)
	q.ChannelID = uint64(channelID)
	q.CreatedAt = time.Unix(createdAt, 0).UTC()
	q.LastEditedAt = time.Unix(editedAt, 0).UTC()
	q.QuoterID = uint64(quoterID)
	q.AuthorID = uint64(authorID)
	q.ReplyAuthorID = uint64(replyID)
	if jumpURL.Valid {
		q.JumpURL = jumpURL.String
	}
	if err := json.Unmarshal([]byte(imagesJSON), &q.Images); err != nil {
		return nil, fmt.Errorf("failed to decode images for quote %q: %w", name, err)
	}

	return &q, nil
}

// Count возвращает число цитат в хранилище.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM quotes").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count quotes: %w", err)
	}
	return n, nil
}
