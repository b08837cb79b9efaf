package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	apperror "chat-shim/internal/error"
	"chat-shim/internal/service"

	"github.com/joho/godotenv"
)

const (
	BackendOpenAI = "openai"
	BackendEcho   = "echo"

	TransportEPC     = "epc"
	TransportJSONRPC = "jsonrpc"
)

// Config holds all configuration for the application
type Config struct {
	Backend       string
	APIKey        string
	BaseURL       string
	Model         string
	MaxTokens     int
	MaxExchanges  int
	Timeout       time.Duration
	RedisAddr     string
	RedisPassword string
	Transport     string
	RPCHost       string
	RPCPort       int
	HTTPAddr      string
	CursorPolicy  service.CursorPolicy
	LogLevel      string
}

// ------------------------------------------------------------------------------------------------------
// Load reads .env (when present) and the environment. The API key is not
// checked here: the chat client is built lazily and reports a missing key
// on first use.
func Load() (*Config, error) {
	_ = godotenv.Load()

	policy, err := service.ParseCursorPolicy(getEnv("STREAM_CURSOR_POLICY", string(service.CursorKeep)))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Backend:       getEnv("LLM_BACKEND", BackendOpenAI),
		APIKey:        getEnv("CHAT_API_KEY", ""),
		BaseURL:       getEnv("CHAT_BASE_URL", "https://api.groq.com/openai/v1/chat/completions"),
		Model:         getEnv("CHAT_MODEL", "llama-3.1-8b-instant"),
		MaxTokens:     getEnvAsInt("MAX_TOKENS", 1024),
		MaxExchanges:  getEnvAsInt("MAX_EXCHANGES", 20),
		Timeout:       getEnvAsDuration("CHAT_TIMEOUT", 60*time.Second),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		Transport:     getEnv("RPC_TRANSPORT", TransportEPC),
		RPCHost:       getEnv("RPC_HOST", "localhost"),
		RPCPort:       getEnvAsInt("RPC_PORT", 0),
		HTTPAddr:      getEnv("HTTP_ADDR", ""),
		CursorPolicy:  policy,
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ------------------------------------------------------------------------------------------------------
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendOpenAI, BackendEcho:
	default:
		return fmt.Errorf("%w: %q", apperror.ErrUnknownBackend, c.Backend)
	}
	switch c.Transport {
	case TransportEPC, TransportJSONRPC:
	default:
		return fmt.Errorf("%w: %q", apperror.ErrUnknownTransport, c.Transport)
	}
	if c.RPCPort < 0 || c.RPCPort > 65535 {
		return fmt.Errorf("RPC_PORT out of range: %d", c.RPCPort)
	}
	return nil
}

// ------------------------------------------------------------------------------------------------------
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// ------------------------------------------------------------------------------------------------------
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// ------------------------------------------------------------------------------------------------------
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
