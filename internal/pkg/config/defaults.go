package config

// Default values for configuration.
const (
	// Server defaults
	DefaultServerHost             = "0.0.0.0"
	DefaultServerPort             = 8080
	DefaultShutdownTimeoutSeconds = 15
	DefaultMaxUploadSizeMB        = 10

	// Discord API defaults
	DefaultAPIBaseURL            = "https://discord.com/api/v10"
	DefaultRequestTimeoutSeconds = 10

	// Storage defaults
	DefaultStoragePath = "quotes.db"

	// Import defaults. Размеры страниц и каданса прогресса наследуют
	// поведение легаси-импортера.
	DefaultProgressEvery           = 10
	DefaultReactionPageSize        = 20
	DefaultHistoryScanLimit        = 40
	DefaultAnnouncerBotID   uint64 = 85614143951892480
	DefaultMarkerEmoji             = "\U0001F4AC"
	DefaultCacheTTLMinutes         = 60

	// Logging defaults
	DefaultLogLevel = "info"
)
