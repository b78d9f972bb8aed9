package services

import (
	"context"

	"discord-quote-importer/internal/domain"
	"discord-quote-importer/internal/ports"
)

// MockGuildClient - мок-реализация ports.GuildClient для тестирования
type MockGuildClient struct {
	ChannelsFunc      func(ctx context.Context) ([]domain.Channel, error)
	MessageFunc       func(ctx context.Context, channelID, messageID uint64) (*domain.Message, error)
	ReactionUsersFunc func(ctx context.Context, channelID, messageID uint64, emoji string, limit int) ([]domain.User, error)
	MessagesAfterFunc func(ctx context.Context, channelID, afterID uint64, limit int) ([]domain.Message, error)
	SearchMembersFunc func(ctx context.Context, query string, limit int) ([]domain.Member, error)
}

// Channels реализует интерфейс ports.GuildClient
func (m *MockGuildClient) Channels(ctx context.Context) ([]domain.Channel, error) {
	if m.ChannelsFunc != nil {
		return m.ChannelsFunc(ctx)
	}
	return nil, nil
}

// Message реализует интерфейс ports.GuildClient
func (m *MockGuildClient) Message(ctx context.Context, channelID, messageID uint64) (*domain.Message, error) {
	if m.MessageFunc != nil {
		return m.MessageFunc(ctx, channelID, messageID)
	}
	return nil, nil
}

// ReactionUsers реализует интерфейс ports.GuildClient
func (m *MockGuildClient) ReactionUsers(ctx context.Context, channelID, messageID uint64, emoji string, limit int) ([]domain.User, error) {
	if m.ReactionUsersFunc != nil {
		return m.ReactionUsersFunc(ctx, channelID, messageID, emoji, limit)
	}
	return nil, nil
}

// MessagesAfter реализует интерфейс ports.GuildClient
func (m *MockGuildClient) MessagesAfter(ctx context.Context, channelID, afterID uint64, limit int) ([]domain.Message, error) {
	if m.MessagesAfterFunc != nil {
		return m.MessagesAfterFunc(ctx, channelID, afterID, limit)
	}
	return nil, nil
}

// SearchMembers реализует интерфейс ports.GuildClient
func (m *MockGuildClient) SearchMembers(ctx context.Context, query string, limit int) ([]domain.Member, error) {
	if m.SearchMembersFunc != nil {
		return m.SearchMembersFunc(ctx, query, limit)
	}
	return nil, nil
}

// RecordingReporter - мок-реализация ports.Reporter, накапливающая все строки
type RecordingReporter struct {
	ProgressLines []string
	InfoLines     []string
	WarnLines     []string
}

func (r *RecordingReporter) Progress(text string) {
	r.ProgressLines = append(r.ProgressLines, text)
}

func (r *RecordingReporter) Info(text string) {
	r.InfoLines = append(r.InfoLines, text)
}

func (r *RecordingReporter) Warn(text string) {
	r.WarnLines = append(r.WarnLines, text)
}

// MockUserInferrer - мок-реализация ports.UserInferrer для тестирования
type MockUserInferrer struct {
	InferFunc func(ctx context.Context, rep ports.Reporter, role, nick, recordID string) *domain.Member
}

func (m *MockUserInferrer) Infer(ctx context.Context, rep ports.Reporter, role, nick, recordID string) *domain.Member {
	if m.InferFunc != nil {
		return m.InferFunc(ctx, rep, role, nick, recordID)
	}
	return nil
}
