// Package discord реализует ports.GuildClient поверх REST API Discord.
// В корпусе нет готового SDK, поэтому клиент покрывает ровно те пять
// операций, которые нужны конвейеру импорта.
package discord

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"discord-quote-importer/internal/domain"
	"discord-quote-importer/internal/pkg/config"
)

// errNotFound — внутренняя метка ответа 404; наружу превращается в nil-результат.
var errNotFound = errors.New("resource not found")

const defaultMaxRetries = 3

// Client — REST-клиент Discord в пределах одной гильдии.
// Повторяет запросы с экспоненциальной паузой при 429 и 5xx; остальные
// ошибки HTTP терминальны.
type Client struct {
	http    *http.Client
	token   string
	guildID uint64
	baseURL string
	log     *slog.Logger
}

// Option — функциональная опция для настройки клиента.
type Option func(*Client)

// WithLogger устанавливает логгер для клиента.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithHTTPClient подменяет HTTP-клиент (используется в тестах).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// New создает новый клиент по конфигурации Discord.
func New(cfg config.Discord, opts ...Option) *Client {
	c := &Client{
		http:    &http.Client{Timeout: time.Duration(cfg.RequestTimeoutSeconds) * time.Second},
		token:   cfg.Token,
		guildID: cfg.GuildID,
		baseURL: strings.TrimSuffix(cfg.APIBaseURL, "/"),
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// snowflake — идентификатор Discord; в JSON приходит строкой.
type snowflake uint64

func (s *snowflake) UnmarshalJSON(b []byte) error {
	str := strings.Trim(string(b), `"`)
	if str == "" || str == "null" {
		*s = 0
		return nil
	}
	v, err := strconv.ParseUint(str, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid snowflake %q: %w", str, err)
	}
	*s = snowflake(v)
	return nil
}

type userPayload struct {
	ID       snowflake `json:"id"`
	Username string    `json:"username"`
	Bot      bool      `json:"bot"`
}

type memberPayload struct {
	User userPayload `json:"user"`
	Nick string      `json:"nick"`
}

type channelPayload struct {
	ID   snowflake `json:"id"`
	Name string    `json:"name"`
	Type int       `json:"type"`
}

type attachmentPayload struct {
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
}

type messagePayload struct {
	ID              snowflake           `json:"id"`
	ChannelID       snowflake           `json:"channel_id"`
	Author          userPayload         `json:"author"`
	Content         string              `json:"content"`
	EditedTimestamp string              `json:"edited_timestamp"`
	Attachments     []attachmentPayload `json:"attachments"`
	ReferencedMsg   *messagePayload     `json:"referenced_message"`
}

// Channels возвращает все каналы гильдии.
func (c *Client) Channels(ctx context.Context) ([]domain.Channel, error) {
	var payload []channelPayload
	path := fmt.Sprintf("/guilds/%d/channels", c.guildID)
	if err := c.getJSON(ctx, path, &payload); err != nil {
		return nil, err
	}

	channels := make([]domain.Channel, 0, len(payload))
	for _, ch := range payload {
		channels = append(channels, domain.Channel{
			ID:   uint64(ch.ID),
			Name: ch.Name,
			Type: channelType(ch.Type),
		})
	}
	return channels, nil
}

// Message возвращает сообщение по идентификатору или nil, если его нет.
func (c *Client) Message(ctx context.Context, channelID, messageID uint64) (*domain.Message, error) {
	var payload messagePayload
	path := fmt.Sprintf("/channels/%d/messages/%d", channelID, messageID)
	err := c.getJSON(ctx, path, &payload)
	if errors.Is(err, errNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	msg := c.toMessage(payload)
	return &msg, nil
}

// ReactionUsers возвращает до limit пользователей, поставивших реакцию emoji.
func (c *Client) ReactionUsers(ctx context.Context, channelID, messageID uint64, emoji string, limit int) ([]domain.User, error) {
	var payload []userPayload
	path := fmt.Sprintf("/channels/%d/messages/%d/reactions/%s?limit=%d",
		channelID, messageID, url.PathEscape(emoji), limit)
	err := c.getJSON(ctx, path, &payload)
	if errors.Is(err, errNotFound) {
		// Реакций этого эмодзи на сообщении нет.
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	users := make([]domain.User, 0, len(payload))
	for _, u := range payload {
		users = append(users, domain.User{ID: uint64(u.ID), Username: u.Username, IsBot: u.Bot})
	}
	return users, nil
}

// MessagesAfter возвращает до limit сообщений канала строго после afterID в
// хронологическом порядке. API отдает их от новых к старым, поэтому
// результат пересортировывается по возрастанию идентификатора: для
// snowflake это и есть хронология.
func (c *Client) MessagesAfter(ctx context.Context, channelID, afterID uint64, limit int) ([]domain.Message, error) {
	var payload []messagePayload
	path := fmt.Sprintf("/channels/%d/messages?after=%d&limit=%d", channelID, afterID, limit)
	if err := c.getJSON(ctx, path, &payload); err != nil {
		return nil, err
	}

	messages := make([]domain.Message, 0, len(payload))
	for _, m := range payload {
		messages = append(messages, c.toMessage(m))
	}
	sort.Slice(messages, func(i, j int) bool { return messages[i].ID < messages[j].ID })
	return messages, nil
}

// SearchMembers ищет участников гильдии по подстроке ника.
func (c *Client) SearchMembers(ctx context.Context, query string, limit int) ([]domain.Member, error) {
	var payload []memberPayload
	path := fmt.Sprintf("/guilds/%d/members/search?query=%s&limit=%d",
		c.guildID, url.QueryEscape(query), limit)
	if err := c.getJSON(ctx, path, &payload); err != nil {
		return nil, err
	}

	members := make([]domain.Member, 0, len(payload))
	for _, m := range payload {
		members = append(members, domain.Member{
			User: domain.User{ID: uint64(m.User.ID), Username: m.User.Username, IsBot: m.User.Bot},
			Nick: m.Nick,
		})
	}
	return members, nil
}

// toMessage переводит данные API в доменное сообщение.
func (c *Client) toMessage(p messagePayload) domain.Message {
	msg := domain.Message{
		ID:        uint64(p.ID),
		ChannelID: uint64(p.ChannelID),
		Author:    domain.User{ID: uint64(p.Author.ID), Username: p.Author.Username, IsBot: p.Author.Bot},
		Content:   p.Content,
		JumpURL:   fmt.Sprintf("https://discord.com/channels/%d/%d/%d", c.guildID, uint64(p.ChannelID), uint64(p.ID)),
	}
	if p.EditedTimestamp != "" {
		if t, err := time.Parse(time.RFC3339, p.EditedTimestamp); err == nil {
			msg.EditedAt = t
		}
	}
	if p.ReferencedMsg != nil {
		msg.ReplyAuthorID = uint64(p.ReferencedMsg.Author.ID)
	}
	for _, a := range p.Attachments {
		msg.Attachments = append(msg.Attachments, domain.Attachment{URL: a.URL, ContentType: a.ContentType})
	}
	return msg
}

// channelType переводит числовой тип канала API в доменный.
func channelType(apiType int) domain.ChannelType {
	switch apiType {
	case 0, 5: // текстовые и анонс-каналы ведут себя одинаково для импорта
		return domain.ChannelText
	case 13:
		return domain.ChannelStage
	case 2:
		return domain.ChannelVoice
	default:
		return domain.ChannelOther
	}
}

// getJSON выполняет GET-запрос с повторами при 429 и 5xx и декодирует ответ.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to build request: %w", err))
		}
		req.Header.Set("Authorization", "Bot "+c.token)
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			// Сетевые ошибки считаем временными.
			return fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return fmt.Errorf("failed to read response body: %w", err)
			}
			if err := json.Unmarshal(body, out); err != nil {
				return backoff.Permanent(fmt.Errorf("failed to decode response: %w", err))
			}
			return nil
		case resp.StatusCode == http.StatusNotFound:
			return backoff.Permanent(errNotFound)
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			c.log.DebugContext(ctx, "Discord API throttled or unavailable, retrying", "path", path, "status", resp.StatusCode)
			return fmt.Errorf("discord api returned status %d", resp.StatusCode)
		default:
			return backoff.Permanent(fmt.Errorf("discord api returned status %d", resp.StatusCode))
		}
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), defaultMaxRetries), ctx)
	return backoff.Retry(op, bo)
}
