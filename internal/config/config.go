package config

import (
	"time"
)

var BuildVersion = "0.0.0-dev"

const (
	StoreDriverMemory   = "memory"
	StoreDriverSQLite   = "sqlite"
	StoreDriverPostgres = "postgres"
)

// Validation tags described here: https://pkg.go.dev/github.com/go-playground/validator/v10
type Config struct {
	AI struct {
		GeminiAPIKey    string        `env:"GEMINI_API_KEY"      flag:"gemini-api-key"`
		AnalysisModel   string        `env:"AI_ANALYSIS_MODEL"   flag:"ai-analysis-model"`
		ChatModel       string        `env:"AI_CHAT_MODEL"       flag:"ai-chat-model"`
		AnalysisTimeout time.Duration `env:"AI_ANALYSIS_TIMEOUT" flag:"ai-analysis-timeout" validate:"omitempty,min=1s" desc:"time to wait for the image analysis before treating the result as unknown"`
		ChatHistorySize int           `env:"AI_CHAT_HISTORY"     flag:"ai-chat-history"     validate:"omitempty,min=1" desc:"number of chat messages kept per session"`
	}
	App struct {
		DemoMode                bool          `env:"APP_DEMO_MODE"                 flag:"app-demo-mode"                 desc:"accept the 0000 bypass code at OTP checks, never enable in production"`
		SeedFixtures            bool          `env:"APP_SEED_FIXTURES"             flag:"app-seed-fixtures"             desc:"load the demo users, demands and contracts on startup"`
		BuyerConfirmationWindow time.Duration `env:"APP_BUYER_CONFIRMATION_WINDOW" flag:"app-buyer-confirmation-window" validate:"omitempty,min=1s" desc:"time the buyer has to confirm or dispute a delivery"`
	}
	Environment string `env:"ENVIRONMENT" flag:"environment"`
	Log         struct {
		Color        bool   `env:"LOG_COLOR"         flag:"log-color"`
		FolderPath   string `env:"LOG_FOLDER_PATH"   flag:"log-folder-path"   validate:"omitempty,dirpath" desc:"enables file logging and sets the folder path"`
		IsProd       bool   `env:"LOG_IS_PROD"       flag:"log-is-prod"       validate:""                  desc:"affects the format of the log output"`
		JSON         bool   `env:"LOG_JSON"          flag:"log-json"`
		LevelApp     string `env:"LOG_LEVEL_APP"     flag:"log-level-app"     validate:"omitempty,oneof=debug info warn error dpanic panic fatal"`
		LevelTracker string `env:"LOG_LEVEL_TRACKER" flag:"log-level-tracker" validate:"omitempty,oneof=debug info warn error dpanic panic fatal"`
		LevelHTTP    string `env:"LOG_LEVEL_HTTP"    flag:"log-level-http"    validate:"omitempty,oneof=debug info warn error dpanic panic fatal"`
	}
	Store struct {
		Driver string `env:"STORE_DRIVER" flag:"store-driver" validate:"omitempty,oneof=memory sqlite postgres"`
		DSN    string `env:"STORE_DSN"    flag:"store-dsn"    validate:"required_unless=Driver memory" desc:"data source name, file path for sqlite or connection url for postgres"`
	}
	Web struct {
		Address   string `env:"WEB_ADDRESS"    flag:"web-address"    validate:"omitempty,hostname_port" desc:"http server address host:port"`
		PublicUrl string `env:"WEB_PUBLIC_URL" flag:"web-public-url" validate:"omitempty,url"           desc:"public url of the api, falls back to web-address if empty"`
	}
}

func (cfg *Config) SetDefaults() {
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	// AI

	if cfg.AI.AnalysisModel == "" {
		cfg.AI.AnalysisModel = "gemini-2.5-flash"
	}
	if cfg.AI.ChatModel == "" {
		cfg.AI.ChatModel = "gemini-2.5-flash"
	}
	if cfg.AI.AnalysisTimeout == 0 {
		cfg.AI.AnalysisTimeout = 30 * time.Second
	}
	if cfg.AI.ChatHistorySize == 0 {
		cfg.AI.ChatHistorySize = 20
	}

	// App

	if cfg.App.BuyerConfirmationWindow == 0 {
		cfg.App.BuyerConfirmationWindow = 24 * time.Hour
	}

	// Log

	if cfg.Log.LevelApp == "" {
		cfg.Log.LevelApp = "debug"
	}
	if cfg.Log.LevelTracker == "" {
		cfg.Log.LevelTracker = "debug"
	}
	if cfg.Log.LevelHTTP == "" {
		cfg.Log.LevelHTTP = "info"
	}

	// Store

	if cfg.Store.Driver == "" {
		cfg.Store.Driver = StoreDriverMemory
	}

	// Web

	if cfg.Web.Address == "" {
		cfg.Web.Address = "0.0.0.0:8080"
	}
	if cfg.Web.PublicUrl == "" {
		cfg.Web.PublicUrl = "http://localhost:8080"
	}
}

// GetSanitized returns a copy of the config with sensitive data removed
// explicitly adding each field here to avoid accidentally leaking sensitive data
func (cfg *Config) GetSanitized() interface{} {
	publicCfg := Config{}

	publicCfg.AI.AnalysisModel = cfg.AI.AnalysisModel
	publicCfg.AI.ChatModel = cfg.AI.ChatModel
	publicCfg.AI.AnalysisTimeout = cfg.AI.AnalysisTimeout
	publicCfg.AI.ChatHistorySize = cfg.AI.ChatHistorySize

	publicCfg.App.DemoMode = cfg.App.DemoMode
	publicCfg.App.SeedFixtures = cfg.App.SeedFixtures
	publicCfg.App.BuyerConfirmationWindow = cfg.App.BuyerConfirmationWindow

	publicCfg.Environment = cfg.Environment

	publicCfg.Log.Color = cfg.Log.Color
	publicCfg.Log.FolderPath = cfg.Log.FolderPath
	publicCfg.Log.IsProd = cfg.Log.IsProd
	publicCfg.Log.JSON = cfg.Log.JSON
	publicCfg.Log.LevelApp = cfg.Log.LevelApp
	publicCfg.Log.LevelTracker = cfg.Log.LevelTracker
	publicCfg.Log.LevelHTTP = cfg.Log.LevelHTTP

	publicCfg.Store.Driver = cfg.Store.Driver

	publicCfg.Web.Address = cfg.Web.Address
	publicCfg.Web.PublicUrl = cfg.Web.PublicUrl

	return publicCfg
}
