package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port              int
	LogLevel          string
	AnthropicAPIKey   string
	AnthropicModel    string
	DatabaseURL       string
	NatsURL           string
	NatsToken         string
	SpeechToTextURL   string
	TextToSpeechURL   string
	SpeechVoice       string
	APIToken          string
	TopicSeconds      int
	GraceSeconds      int
	GenerateTimeout   int // seconds
	AnalyzeTimeout    int // seconds
	TranscribeTimeout int // seconds
	SummaryTimeout    int // seconds
}

func Load() Config {
	return Config{
		Port:              envInt("VIVA_PORT", 8810),
		LogLevel:          envStr("LOG_LEVEL", "info"),
		AnthropicAPIKey:   envStr("ANTHROPIC_API_KEY", ""),
		AnthropicModel:    envStr("VIVA_MODEL", "claude-sonnet-4-20250514"),
		DatabaseURL:       envStr("DATABASE_URL", ""),
		NatsURL:           envStr("NATS_URL", ""),
		NatsToken:         envStr("NATS_TOKEN", ""),
		SpeechToTextURL:   envStr("VIVA_STT_URL", ""),
		TextToSpeechURL:   envStr("VIVA_TTS_URL", ""),
		SpeechVoice:       envStr("VIVA_TTS_VOICE", "alloy"),
		APIToken:          envStr("VIVA_API_TOKEN", ""),
		TopicSeconds:      envInt("VIVA_TOPIC_SECONDS", 180),
		GraceSeconds:      envInt("VIVA_GRACE_SECONDS", 5),
		GenerateTimeout:   envInt("VIVA_GENERATE_TIMEOUT", 30),
		AnalyzeTimeout:    envInt("VIVA_ANALYZE_TIMEOUT", 30),
		TranscribeTimeout: envInt("VIVA_TRANSCRIBE_TIMEOUT", 15),
		SummaryTimeout:    envInt("VIVA_SUMMARY_TIMEOUT", 30),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
