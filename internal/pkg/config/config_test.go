package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullYAML = `
server:
  host: "127.0.0.1"
  port: 8081
  shutdown_timeout_seconds: 20
discord:
  token: "test-token"
  guild_id: 1011110101010
  api_base_url: "https://discord.example.com/api/v10"
  request_timeout_seconds: 5
storage:
  path: "test_quotes.db"
import:
  progress_every: 5
  reaction_page_size: 10
  history_scan_limit: 30
  announcer_bot_id: 85614143951892480
  marker_emoji: "💬"
  task_timeout_seconds: 120
  cache_ttl_minutes: 30
logging:
  level: "debug"
`

const minimalYAML = `
discord:
  token: "test-token"
  guild_id: 1011110101010
`

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	err := os.WriteFile(path, []byte(content), 0644)
	require.NoError(t, err)
	return path
}

func TestLoadFromYAML(t *testing.T) {
	t.Run("Полная конфигурация", func(t *testing.T) {
		path := createTempConfigFile(t, fullYAML)

		cfg, err := loadFromYAML(path)
		require.NoError(t, err)
		require.NotNil(t, cfg)

		assert.Equal(t, "127.0.0.1", cfg.Server.Host)
		assert.Equal(t, 8081, cfg.Server.Port)
		assert.Equal(t, 20, cfg.Server.ShutdownTimeoutSeconds)
		assert.Equal(t, "127.0.0.1:8081", cfg.Address())

		assert.Equal(t, "test-token", cfg.Discord.Token)
		assert.Equal(t, uint64(1011110101010), cfg.Discord.GuildID)
		assert.Equal(t, "https://discord.example.com/api/v10", cfg.Discord.APIBaseURL)
		assert.Equal(t, 5, cfg.Discord.RequestTimeoutSeconds)

		assert.Equal(t, "test_quotes.db", cfg.Storage.Path)

		assert.Equal(t, 5, cfg.Import.ProgressEvery)
		assert.Equal(t, 10, cfg.Import.ReactionPageSize)
		assert.Equal(t, 30, cfg.Import.HistoryScanLimit)
		assert.Equal(t, uint64(85614143951892480), cfg.Import.AnnouncerBotID)
		assert.Equal(t, "💬", cfg.Import.MarkerEmoji)
		assert.Equal(t, 120, cfg.Import.TaskTimeoutSeconds)
		assert.Equal(t, 30, cfg.Import.CacheTTLMinutes)

		assert.Equal(t, "debug", cfg.Logging.Level)
	})

	t.Run("Несуществующий файл возвращает ошибку", func(t *testing.T) {
		cfg, err := loadFromYAML("non_existent_config.yml")
		assert.Error(t, err)
		assert.Nil(t, cfg)
	})

	t.Run("Некорректный YAML возвращает ошибку", func(t *testing.T) {
		path := createTempConfigFile(t, "server: [broken")

		cfg, err := loadFromYAML(path)
		assert.Error(t, err)
		assert.Nil(t, cfg)
	})
}

func TestApplyDefaults(t *testing.T) {
	t.Run("Пустые поля заполняются значениями по умолчанию", func(t *testing.T) {
		path := createTempConfigFile(t, minimalYAML)
		cfg, err := loadFromYAML(path)
		require.NoError(t, err)

		cfg.applyDefaults()

		assert.Equal(t, DefaultServerHost, cfg.Server.Host)
		assert.Equal(t, DefaultServerPort, cfg.Server.Port)
		assert.Equal(t, DefaultShutdownTimeoutSeconds, cfg.Server.ShutdownTimeoutSeconds)
		assert.Equal(t, DefaultAPIBaseURL, cfg.Discord.APIBaseURL)
		assert.Equal(t, DefaultRequestTimeoutSeconds, cfg.Discord.RequestTimeoutSeconds)
		assert.Equal(t, DefaultStoragePath, cfg.Storage.Path)
		assert.Equal(t, DefaultProgressEvery, cfg.Import.ProgressEvery)
		assert.Equal(t, DefaultReactionPageSize, cfg.Import.ReactionPageSize)
		assert.Equal(t, DefaultHistoryScanLimit, cfg.Import.HistoryScanLimit)
		assert.Equal(t, DefaultAnnouncerBotID, cfg.Import.AnnouncerBotID)
		assert.Equal(t, DefaultMarkerEmoji, cfg.Import.MarkerEmoji)
		assert.Equal(t, DefaultCacheTTLMinutes, cfg.Import.CacheTTLMinutes)
		assert.Equal(t, DefaultLogLevel, cfg.Logging.Level)
	})

	t.Run("Нулевой таймаут задачи не переопределяется", func(t *testing.T) {
		path := createTempConfigFile(t, minimalYAML)
		cfg, err := loadFromYAML(path)
		require.NoError(t, err)

		cfg.applyDefaults()

		// 0 означает "без ограничений" и должен сохраниться
		assert.Equal(t, 0, cfg.Import.TaskTimeoutSeconds)
	})

	t.Run("Заданные значения не затираются", func(t *testing.T) {
		path := createTempConfigFile(t, fullYAML)
		cfg, err := loadFromYAML(path)
		require.NoError(t, err)

		cfg.applyDefaults()

		assert.Equal(t, 5, cfg.Import.ProgressEvery)
		assert.Equal(t, "debug", cfg.Logging.Level)
	})
}

func TestLoadFromEnv(t *testing.T) {
	t.Run("Загрузка из переменных окружения", func(t *testing.T) {
		t.Setenv("DISCORD_TOKEN", "env-token")
		t.Setenv("DISCORD_GUILD_ID", "12345")
		t.Setenv("SERVER_HOST", "localhost")
		t.Setenv("SERVER_PORT", "9090")
		t.Setenv("QUOTES_DB_PATH", "env_quotes.db")

		cfg, err := loadFromEnv()
		require.NoError(t, err)

		assert.Equal(t, "env-token", cfg.Discord.Token)
		assert.Equal(t, uint64(12345), cfg.Discord.GuildID)
		assert.Equal(t, "localhost", cfg.Server.Host)
		assert.Equal(t, 9090, cfg.Server.Port)
		assert.Equal(t, "env_quotes.db", cfg.Storage.Path)
	})

	t.Run("Отсутствие токена возвращает ошибку", func(t *testing.T) {
		t.Setenv("DISCORD_TOKEN", "")
		t.Setenv("DISCORD_GUILD_ID", "12345")

		cfg, err := loadFromEnv()
		assert.Error(t, err)
		assert.Nil(t, cfg)
	})

	t.Run("Нечисловой guild_id возвращает ошибку", func(t *testing.T) {
		t.Setenv("DISCORD_TOKEN", "env-token")
		t.Setenv("DISCORD_GUILD_ID", "not-a-number")

		cfg, err := loadFromEnv()
		assert.Error(t, err)
		assert.Nil(t, cfg)
	})
}

func TestValidate(t *testing.T) {
	validConfig := func(t *testing.T) *Config {
		t.Helper()
		path := createTempConfigFile(t, fullYAML)
		cfg, err := loadFromYAML(path)
		require.NoError(t, err)
		cfg.applyDefaults()
		return cfg
	}

	t.Run("Корректная конфигурация проходит валидацию", func(t *testing.T) {
		cfg := validConfig(t)
		assert.NoError(t, cfg.Validate())
	})

	t.Run("Пустой токен не проходит валидацию", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.Discord.Token = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("Нулевой guild_id не проходит валидацию", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.Discord.GuildID = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("Недопустимый порт не проходит валидацию", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.Server.Port = 70000
		assert.Error(t, cfg.Validate())
	})

	t.Run("Отрицательный таймаут задачи не проходит валидацию", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.Import.TaskTimeoutSeconds = -1
		assert.Error(t, cfg.Validate())
	})

	t.Run("Нулевой таймаут задачи допустим", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.Import.TaskTimeoutSeconds = 0
		assert.NoError(t, cfg.Validate())
	})

	t.Run("Неизвестный уровень логирования не проходит валидацию", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.Logging.Level = "verbose"
		assert.Error(t, cfg.Validate())
	})
}
