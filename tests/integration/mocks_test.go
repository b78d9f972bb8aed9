package integration

import (
	"context"
	"strings"

	"discord-quote-importer/internal/domain"
	"discord-quote-importer/internal/ports"
)

// FakeGuild - мок-реализация ports.GuildClient поверх заранее заданного
// состояния гильдии: каналы, сообщения, реакции и участники в памяти.
type FakeGuild struct {
	ChannelList []domain.Channel
	// Messages хранит сообщения по каналу в хронологическом порядке
	Messages map[uint64][]domain.Message
	// Reactions хранит пользователей реакции по идентификатору сообщения
	Reactions map[uint64][]domain.User
	Members   []domain.Member
}

var _ ports.GuildClient = (*FakeGuild)(nil)

func (f *FakeGuild) Channels(ctx context.Context) ([]domain.Channel, error) {
	return f.ChannelList, nil
}

func (f *FakeGuild) Message(ctx context.Context, channelID, messageID uint64) (*domain.Message, error) {
	for _, m := range f.Messages[channelID] {
		if m.ID == messageID {
			msg := m
			return &msg, nil
		}
	}
	return nil, nil
}

func (f *FakeGuild) ReactionUsers(ctx context.Context, channelID, messageID uint64, emoji string, limit int) ([]domain.User, error) {
	users := f.Reactions[messageID]
	if len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

func (f *FakeGuild) MessagesAfter(ctx context.Context, channelID, afterID uint64, limit int) ([]domain.Message, error) {
	var out []domain.Message
	for _, m := range f.Messages[channelID] {
		if m.ID > afterID {
			out = append(out, m)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *FakeGuild) SearchMembers(ctx context.Context, query string, limit int) ([]domain.Member, error) {
	var out []domain.Member
	for _, m := range f.Members {
		nick := m.Nick
		if nick == "" {
			nick = m.User.Username
		}
		if strings.HasPrefix(strings.ToLower(nick), strings.ToLower(query)) {
			out = append(out, m)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// CollectingReporter - мок-реализация ports.Reporter, накапливающая строки
type CollectingReporter struct {
	ProgressLines []string
	Diags         []domain.Diagnostic
}

var _ ports.Reporter = (*CollectingReporter)(nil)

func (r *CollectingReporter) Progress(text string) {
	r.ProgressLines = append(r.ProgressLines, text)
}

func (r *CollectingReporter) Info(text string) {
	r.Diags = append(r.Diags, domain.Diagnostic{Level: domain.DiagnosticInfo, Text: text})
}

func (r *CollectingReporter) Warn(text string) {
	r.Diags = append(r.Diags, domain.Diagnostic{Level: domain.DiagnosticWarning, Text: text})
}
