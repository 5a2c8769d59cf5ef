package ecovalley

import "time"

type NarratorConfig struct {
	Provider        string        `env:"NARRATOR_PROVIDER,default=bedrock"`
	ModelID         string        `env:"MODEL_ID"`
	MaxTokens       int32         `env:"MAX_TOKENS,default=1000"`
	Temperature     float32       `env:"TEMPERATURE,default=0.7"`
	TopP            float32       `env:"TOP_P,default=0.9"`
	Timeout         time.Duration `env:"NARRATOR_TIMEOUT,default=30s"`
	RatePerSecond   float64       `env:"NARRATOR_RATE_PER_SECOND,default=5"`
	Burst           int           `env:"NARRATOR_BURST,default=1"`
	AnthropicAPIKey string        `env:"ANTHROPIC_API_KEY"`
	OllamaEndpoint  string        `env:"BASE_OLLAMA_ENDPOINT,default=http://localhost:11434"`
}

type AgentConfig struct {
	CatalogSource      string `env:"CATALOG_SOURCE,default=file"`
	CatalogPath        string `env:"CATALOG_PATH,default=data/materials.csv"`
	CatalogS3Bucket    string `env:"CATALOG_S3_BUCKET"`
	CatalogS3Key       string `env:"CATALOG_S3_KEY"`
	CatalogSQLitePath  string `env:"CATALOG_SQLITE_PATH,default=ecovalley.db"`
	CatalogSQLiteTable string `env:"CATALOG_SQLITE_TABLE,default=materials"`
	HistoryLimit       int    `env:"HISTORY_LIMIT,default=1000"`
	StageLog           string `env:"STAGE_LOG,default=none"`
}

type ServerConfig struct {
	Port               int    `env:"PORT,default=8000"`
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS,default=*"`
	SlackWebhookURL    string `env:"SLACK_WEBHOOK_URL"`
	SlackChannel       string `env:"SLACK_CHANNEL,default=#materials"`
}
