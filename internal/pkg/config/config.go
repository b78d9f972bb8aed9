// Package config предоставляет управление конфигурацией приложения
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// Server содержит конфигурацию HTTP-сервера
type Server struct {
	Host                   string `json:"host" yaml:"host"`
	Port                   int    `json:"port" yaml:"port"`
	ShutdownTimeoutSeconds int    `json:"shutdown_timeout_seconds" yaml:"shutdown_timeout_seconds"`
}

// Discord содержит конфигурацию клиента Discord API
type Discord struct {
	Token                 string `json:"token" yaml:"token"`
	GuildID               uint64 `json:"guild_id" yaml:"guild_id"`
	APIBaseURL            string `json:"api_base_url" yaml:"api_base_url"`
	RequestTimeoutSeconds int    `json:"request_timeout_seconds" yaml:"request_timeout_seconds"`
}

// Storage содержит конфигурацию хранилища цитат
type Storage struct {
	Path string `json:"path" yaml:"path"`
}

// Import содержит конфигурацию конвейера импорта.
// ProgressEvery задает кадансу отчетов о прогрессе: обновление после каждой
// N-й записи. В легаси-системе значение было зашито; здесь это опция со
// значением по умолчанию 10.
type Import struct {
	ProgressEvery      int    `json:"progress_every" yaml:"progress_every"`
	ReactionPageSize   int    `json:"reaction_page_size" yaml:"reaction_page_size"`
	HistoryScanLimit   int    `json:"history_scan_limit" yaml:"history_scan_limit"`
	AnnouncerBotID     uint64 `json:"announcer_bot_id" yaml:"announcer_bot_id"`
	MarkerEmoji        string `json:"marker_emoji" yaml:"marker_emoji"`
	TaskTimeoutSeconds int    `json:"task_timeout_seconds" yaml:"task_timeout_seconds"` // 0 - без ограничений
	CacheTTLMinutes    int    `json:"cache_ttl_minutes" yaml:"cache_ttl_minutes"`
}

// Logging содержит конфигурацию логирования
type Logging struct {
	Level string `json:"level" yaml:"level"` // debug, info, warn, error
}

// Config содержит конфигурацию приложения
type Config struct {
	Server  Server  `json:"server" yaml:"server"`
	Discord Discord `json:"discord" yaml:"discord"`
	Storage Storage `json:"storage" yaml:"storage"`
	Import  Import  `json:"import" yaml:"import"`
	Logging Logging `json:"logging" yaml:"logging"`
}

// LoadConfig загружает конфигурацию приложения из переменных окружения, .env файла или config.yml
func LoadConfig() (*Config, error) {
	// Загрузка переменных окружения из .env файла, если он существует
	if err := godotenv.Load(); err != nil {
		// Если .env файла не существует, это нормально, мы будем полагаться на переменные окружения или config.yml
	}

	// Попытка загрузки из config.yml сначала
	cfg, err := loadFromYAML("config.yml")
	if err != nil {
		// Если загрузка YAML не удалась, используем переменные окружения
		cfg, err = loadFromEnv()
		if err != nil {
			return nil, fmt.Errorf("не удалось загрузить конфигурацию из env: %w", err)
		}
	}

	cfg.applyDefaults()
	return cfg, nil
}

// loadFromYAML загружает конфигурацию из YAML-файла
func loadFromYAML(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать файл конфигурации %s: %w", filename, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("не удалось разобрать YAML конфигурацию: %w", err)
	}

	return &cfg, nil
}

// loadFromEnv загружает конфигурацию из переменных окружения (обратная совместимость)
func loadFromEnv() (*Config, error) {
	token := getEnv("DISCORD_TOKEN", "")
	guildIDStr := getEnv("DISCORD_GUILD_ID", "")
	host := getEnv("SERVER_HOST", DefaultServerHost)
	portStr := getEnv("SERVER_PORT", strconv.Itoa(DefaultServerPort))
	dbPath := getEnv("QUOTES_DB_PATH", DefaultStoragePath)

	if token == "" || guildIDStr == "" {
		return nil, fmt.Errorf("DISCORD_TOKEN и DISCORD_GUILD_ID должны быть установлены в переменных окружения")
	}

	guildID, err := strconv.ParseUint(guildIDStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("недопустимый DISCORD_GUILD_ID: %w", err)
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("недопустимый SERVER_PORT: %w", err)
	}

	return &Config{
		Server: Server{
			Host: host,
			Port: port,
		},
		Discord: Discord{
			Token:   token,
			GuildID: guildID,
		},
		Storage: Storage{
			Path: dbPath,
		},
	}, nil
}

// applyDefaults заполняет незаданные поля значениями по умолчанию
func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = DefaultServerHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultServerPort
	}
	if c.Server.ShutdownTimeoutSeconds == 0 {
		c.Server.ShutdownTimeoutSeconds = DefaultShutdownTimeoutSeconds
	}
	if c.Discord.APIBaseURL == "" {
		c.Discord.APIBaseURL = DefaultAPIBaseURL
	}
	if c.Discord.RequestTimeoutSeconds == 0 {
		c.Discord.RequestTimeoutSeconds = DefaultRequestTimeoutSeconds
	}
	if c.Storage.Path == "" {
		c.Storage.Path = DefaultStoragePath
	}
	if c.Import.ProgressEvery == 0 {
		c.Import.ProgressEvery = DefaultProgressEvery
	}
	if c.Import.ReactionPageSize == 0 {
		c.Import.ReactionPageSize = DefaultReactionPageSize
	}
	if c.Import.HistoryScanLimit == 0 {
		c.Import.HistoryScanLimit = DefaultHistoryScanLimit
	}
	if c.Import.AnnouncerBotID == 0 {
		c.Import.AnnouncerBotID = DefaultAnnouncerBotID
	}
	if c.Import.MarkerEmoji == "" {
		c.Import.MarkerEmoji = DefaultMarkerEmoji
	}
	// TaskTimeoutSeconds не имеет значения по умолчанию: 0 означает "без ограничений".
	if c.Import.CacheTTLMinutes == 0 {
		c.Import.CacheTTLMinutes = DefaultCacheTTLMinutes
	}
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
}

// Address возвращает адрес сервера в формате "host:port"
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Validate проверяет, являются ли значения конфигурации допустимыми
func (c *Config) Validate() error {
	if c.Discord.Token == "" {
		return fmt.Errorf("discord.token не может быть пустым")
	}
	if c.Discord.GuildID == 0 {
		return fmt.Errorf("discord.guild_id должен быть положительным")
	}
	if c.Discord.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("discord.request_timeout_seconds должно быть положительным")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port должен быть действительным номером порта (1-65535)")
	}
	if c.Server.ShutdownTimeoutSeconds <= 0 {
		return fmt.Errorf("server.shutdown_timeout_seconds должно быть положительным")
	}

	if c.Storage.Path == "" {
		return fmt.Errorf("storage.path не может быть пустым")
	}

	if c.Import.ProgressEvery <= 0 {
		return fmt.Errorf("import.progress_every должно быть положительным")
	}
	if c.Import.ReactionPageSize <= 0 {
		return fmt.Errorf("import.reaction_page_size должно быть положительным")
	}
	if c.Import.HistoryScanLimit <= 0 {
		return fmt.Errorf("import.history_scan_limit должно быть положительным")
	}
	if c.Import.TaskTimeoutSeconds < 0 {
		return fmt.Errorf("import.task_timeout_seconds должно быть неотрицательным (0 для отсутствия ограничений)")
	}
	if c.Import.CacheTTLMinutes <= 0 {
		return fmt.Errorf("import.cache_ttl_minutes должно быть положительным целым числом")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		// all good
	default:
		return fmt.Errorf("logging.level должен быть одним из: debug, info, warn, error")
	}

	return nil
}

// getEnv извлекает значение переменной окружения или возвращает значение по умолчанию, если она не установлена
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
