package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig
	SQLite  SQLiteConfig
	Milvus  MilvusConfig
	Redis   RedisConfig
	LLM     LLMConfig
	Auth    AuthConfig
	Library LibraryConfig
	Invoice InvoiceConfig
	Logging LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  int
	WriteTimeout int
	BodyLimit    int
}

type SQLiteConfig struct {
	Path string
}

type MilvusConfig struct {
	Endpoint  string
	APIKey    string
	VectorDim int
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type LLMConfig struct {
	BaseURL        string
	APIKey         string
	Model          string
	Temperature    float32
	MaxTokens      int
	EmbeddingModel string
}

type AuthConfig struct {
	Username string
	Password string
}

type LibraryConfig struct {
	PDFDir    string
	StaticDir string
}

type InvoiceConfig struct {
	CurrencySymbol string
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/nbc-assist")

	viper.SetEnvPrefix("NBC_ASSIST")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.readTimeout", 30)
	viper.SetDefault("server.writeTimeout", 30)
	viper.SetDefault("server.bodyLimit", 10485760)

	viper.SetDefault("sqlite.path", "./data/orders.db")

	viper.SetDefault("milvus.endpoint", "localhost:19530")
	viper.SetDefault("milvus.vectorDim", 1024)

	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("llm.baseURL", "https://api.groq.com/openai/v1")
	viper.SetDefault("llm.model", "meta-llama/llama-4-scout-17b-16e-instruct")
	viper.SetDefault("llm.temperature", 0.3)
	viper.SetDefault("llm.maxTokens", 700)
	viper.SetDefault("llm.embeddingModel", "BAAI/bge-large-en-v1.5")

	viper.SetDefault("library.pdfDir", "./Standards")
	viper.SetDefault("library.staticDir", "./static")

	viper.SetDefault("invoice.currencySymbol", "Rs.")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.outputPath", "stdout")
}
