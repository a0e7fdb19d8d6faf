package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	LLM      LLMConfig
	STT      STTConfig
	TTS      TTSConfig
	Media    MediaConfig
	Session  SessionConfig
	Audio    AudioConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	URL            string
	MaxConns       int
	MinConns       int
	MigrationsPath string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	DeviceTokenSecret string // empty disables token verification on /ws
}

type LLMConfig struct {
	OpenAIKey        string
	OpenAIBaseURL    string
	AnthropicKey     string
	OllamaURL        string
	DefaultProvider  string
	DefaultModel     string
	FallbackProvider string
	MaxRetries       int
	SystemPrompt     string
	Temperature      float64
	MaxTokens        int
	MaxContext       int // history keeps at most 2*MaxContext entries
}

type STTConfig struct {
	Backend       string // "openai" or "local"
	OpenAIKey     string
	OpenAIBaseURL string
	OpenAIModel   string
	LocalBaseURL  string // self-hosted whisper, default "http://localhost:8178"
}

type TTSConfig struct {
	Chain            []string // ordered fallback stages
	OpenAIKey        string
	OpenAIBaseURL    string
	OpenAIModel      string
	AzureSpeechKey   string
	AzureRegion      string
	VoiceVI          string
	VoiceEN          string
	AzureVoiceVI     string
	AzureVoiceEN     string
	PiperBinPath     string
	PiperModelVI     string
	PiperModelEN     string
	FFmpegPath       string
	StageTimeoutSecs int
}

type MediaConfig struct {
	ServerURL string
	CacheTTL  int // seconds, 0 disables caching
}

type SessionConfig struct {
	ReadTimeoutSecs int // inbound-message wait before a keep-alive ping
	BatchSize       int // segments per synthesis batch
	MinBatchChars   int
	MaxChunkChars   int // Split limit for one-shot replies
}

type AudioConfig struct {
	SampleRate      int
	FrameSize       int     // samples per VAD frame
	EnergyThreshold float64 // RMS threshold for voice activity
	SilenceFrames   int     // silent frames before an utterance is finalized
	MaxBufferFrames int     // ring capacity; oldest frames dropped beyond this
}

func Load() (*Config, error) {
	port, err := getEnvInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	maxConns, err := getEnvInt("DB_MAX_CONNS", 20)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}

	minConns, err := getEnvInt("DB_MIN_CONNS", 5)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxRetries, err := getEnvInt("LLM_MAX_RETRIES", 2)
	if err != nil {
		return nil, fmt.Errorf("invalid LLM_MAX_RETRIES: %w", err)
	}

	maxTokens, err := getEnvInt("LLM_MAX_TOKENS", 500)
	if err != nil {
		return nil, fmt.Errorf("invalid LLM_MAX_TOKENS: %w", err)
	}

	maxContext, err := getEnvInt("LLM_MAX_CONTEXT", 10)
	if err != nil {
		return nil, fmt.Errorf("invalid LLM_MAX_CONTEXT: %w", err)
	}

	temperature, err := getEnvFloat("LLM_TEMPERATURE", 0.7)
	if err != nil {
		return nil, fmt.Errorf("invalid LLM_TEMPERATURE: %w", err)
	}

	energy, err := getEnvFloat("AUDIO_ENERGY_THRESHOLD", 500)
	if err != nil {
		return nil, fmt.Errorf("invalid AUDIO_ENERGY_THRESHOLD: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: port,
		},
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", ""),
			MaxConns:       maxConns,
			MinConns:       minConns,
			MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Auth: AuthConfig{
			DeviceTokenSecret: getEnv("DEVICE_TOKEN_SECRET", ""),
		},
		LLM: LLMConfig{
			OpenAIKey:        getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL:    getEnv("LLM_OPENAI_BASE_URL", ""),
			AnthropicKey:     getEnv("ANTHROPIC_API_KEY", ""),
			OllamaURL:        getEnv("OLLAMA_URL", ""),
			DefaultProvider:  getEnv("LLM_DEFAULT_PROVIDER", "openai"),
			DefaultModel:     getEnv("LLM_DEFAULT_MODEL", "gpt-4o-mini"),
			FallbackProvider: getEnv("LLM_FALLBACK_PROVIDER", ""),
			MaxRetries:       maxRetries,
			SystemPrompt:     getEnv("LLM_SYSTEM_PROMPT", "You are a friendly voice assistant. Keep answers short and speakable."),
			Temperature:      temperature,
			MaxTokens:        maxTokens,
			MaxContext:       maxContext,
		},
		STT: STTConfig{
			Backend:       getEnv("STT_BACKEND", "openai"),
			OpenAIKey:     getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL: getEnv("STT_OPENAI_BASE_URL", ""),
			OpenAIModel:   getEnv("STT_OPENAI_MODEL", "whisper-1"),
			LocalBaseURL:  getEnv("STT_LOCAL_BASE_URL", "http://localhost:8178"),
		},
		TTS: TTSConfig{
			Chain:            splitList(getEnv("TTS_CHAIN", "azure,openai-sdk,openai-rest,piper")),
			OpenAIKey:        getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL:    getEnv("TTS_OPENAI_BASE_URL", ""),
			OpenAIModel:      getEnv("TTS_OPENAI_MODEL", "tts-1"),
			AzureSpeechKey:   getEnv("AZURE_SPEECH_KEY", ""),
			AzureRegion:      getEnv("AZURE_SPEECH_REGION", "eastus"),
			VoiceVI:          getEnv("TTS_VOICE_VI", "nova"),
			VoiceEN:          getEnv("TTS_VOICE_EN", "alloy"),
			AzureVoiceVI:     getEnv("TTS_AZURE_VOICE_VI", "vi-VN-HoaiMyNeural"),
			AzureVoiceEN:     getEnv("TTS_AZURE_VOICE_EN", "en-US-AvaMultilingualNeural"),
			PiperBinPath:     getEnv("TTS_PIPER_BIN", "piper"),
			PiperModelVI:     getEnv("TTS_PIPER_MODEL_VI", ""),
			PiperModelEN:     getEnv("TTS_PIPER_MODEL_EN", ""),
			FFmpegPath:       getEnv("FFMPEG_PATH", "ffmpeg"),
			StageTimeoutSecs: mustInt(getEnv("TTS_STAGE_TIMEOUT", "10")),
		},
		Media: MediaConfig{
			ServerURL: getEnv("MEDIA_SERVER_URL", ""),
			CacheTTL:  mustInt(getEnv("MEDIA_CACHE_TTL", "300")),
		},
		Session: SessionConfig{
			ReadTimeoutSecs: mustInt(getEnv("SESSION_READ_TIMEOUT", "300")),
			BatchSize:       mustInt(getEnv("TTS_BATCH_SIZE", "2")),
			MinBatchChars:   mustInt(getEnv("TTS_MIN_BATCH_CHARS", "150")),
			MaxChunkChars:   mustInt(getEnv("REPLY_MAX_CHUNK_CHARS", "150")),
		},
		Audio: AudioConfig{
			SampleRate:      mustInt(getEnv("AUDIO_SAMPLE_RATE", "16000")),
			FrameSize:       mustInt(getEnv("AUDIO_FRAME_SIZE", "512")),
			EnergyThreshold: energy,
			SilenceFrames:   mustInt(getEnv("AUDIO_SILENCE_FRAMES", "8")),
			MaxBufferFrames: mustInt(getEnv("AUDIO_MAX_BUFFER_FRAMES", "100")),
		},
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(v, 64)
}

// mustInt is for defaults that are always valid integers; a bad override
// falls back to zero and is caught by component constructors.
func mustInt(v string) int {
	n, _ := strconv.Atoi(v)
	return n
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
