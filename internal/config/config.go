package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config stores runtime configuration for the documentation pipeline.
type Config struct {
	Audio         AudioConfig         `yaml:"audio"`
	Transcription TranscriptionConfig `yaml:"transcription"`
	Synthesis     SynthesisConfig     `yaml:"synthesis"`
	Session       SessionConfig       `yaml:"session"`
	Store         StoreConfig         `yaml:"store"`
	Metrics       MetricsConfig       `yaml:"metrics"`
}

type AudioConfig struct {
	RecorderCommand string `yaml:"recorder_command"`
	InputFormat     string `yaml:"input_format"`
	InputDevice     string `yaml:"input_device"`
	SampleRate      int    `yaml:"sample_rate"`
	Channels        int    `yaml:"channels"`
}

type TranscriptionConfig struct {
	Endpoint string        `yaml:"endpoint"`
	APIKey   string        `yaml:"api_key"`
	Model    string        `yaml:"model"`
	Language string        `yaml:"language"`
	Timeout  time.Duration `yaml:"timeout"`
}

type SynthesisConfig struct {
	Endpoint string        `yaml:"endpoint"`
	APIKey   string        `yaml:"api_key"`
	Model    string        `yaml:"model"`
	Timeout  time.Duration `yaml:"timeout"`
}

type SessionConfig struct {
	TranscribeInterval   time.Duration `yaml:"transcribe_interval"`
	SynthesisInterval    time.Duration `yaml:"synthesis_interval"`
	SaveDebounce         time.Duration `yaml:"save_debounce"`
	MinClipBytes         int           `yaml:"min_clip_bytes"`
	MinTranscriptEntries int           `yaml:"min_transcript_entries"`
	ChunkSize            int           `yaml:"chunk_size"`
	ClinicianLabel       string        `yaml:"clinician_label"`
	PatientLabel         string        `yaml:"patient_label"`
}

type StoreConfig struct {
	Path string `yaml:"path"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// Load resolves configuration from an optional YAML file, environment
// variables, and sensible defaults, in increasing precedence.
func Load() (Config, error) {
	var cfg Config

	path := strings.TrimSpace(os.Getenv("MEDSCRIBE_CONFIG"))
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to read config file %q: %w", path, err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("failed to parse config file %q: %w", path, err)
			}
		}
	}

	cfg.Audio = AudioConfig{
		RecorderCommand: envOrDefault("MEDSCRIBE_FFMPEG_COMMAND", defaultString(cfg.Audio.RecorderCommand, "ffmpeg")),
		InputFormat:     envOrDefault("MEDSCRIBE_AUDIO_INPUT_FORMAT", defaultString(cfg.Audio.InputFormat, "pulse")),
		InputDevice:     envOrDefault("MEDSCRIBE_AUDIO_INPUT_DEVICE", defaultString(cfg.Audio.InputDevice, "default")),
		SampleRate:      envOrDefaultInt("MEDSCRIBE_SAMPLE_RATE", defaultInt(cfg.Audio.SampleRate, 16000)),
		Channels:        envOrDefaultInt("MEDSCRIBE_CHANNELS", defaultInt(cfg.Audio.Channels, 1)),
	}
	cfg.Transcription = TranscriptionConfig{
		Endpoint: envOrDefault("MEDSCRIBE_STT_ENDPOINT", cfg.Transcription.Endpoint),
		APIKey:   envOrDefault("MEDSCRIBE_STT_API_KEY", cfg.Transcription.APIKey),
		Model:    envOrDefault("MEDSCRIBE_STT_MODEL", defaultString(cfg.Transcription.Model, "whisper-1")),
		Language: envOrDefault("MEDSCRIBE_STT_LANGUAGE", cfg.Transcription.Language),
		Timeout:  envOrDefaultDuration("MEDSCRIBE_STT_TIMEOUT_MS", defaultDuration(cfg.Transcription.Timeout, 30*time.Second)),
	}
	cfg.Synthesis = SynthesisConfig{
		Endpoint: envOrDefault("MEDSCRIBE_NOTES_ENDPOINT", cfg.Synthesis.Endpoint),
		APIKey:   envOrDefault("MEDSCRIBE_NOTES_API_KEY", cfg.Synthesis.APIKey),
		Model:    envOrDefault("MEDSCRIBE_NOTES_MODEL", cfg.Synthesis.Model),
		Timeout:  envOrDefaultDuration("MEDSCRIBE_NOTES_TIMEOUT_MS", defaultDuration(cfg.Synthesis.Timeout, 60*time.Second)),
	}
	cfg.Session = SessionConfig{
		TranscribeInterval:   envOrDefaultDuration("MEDSCRIBE_TRANSCRIBE_INTERVAL_MS", defaultDuration(cfg.Session.TranscribeInterval, 5*time.Second)),
		SynthesisInterval:    envOrDefaultDuration("MEDSCRIBE_SYNTHESIS_INTERVAL_MS", defaultDuration(cfg.Session.SynthesisInterval, 60*time.Second)),
		SaveDebounce:         envOrDefaultDuration("MEDSCRIBE_SAVE_DEBOUNCE_MS", defaultDuration(cfg.Session.SaveDebounce, 500*time.Millisecond)),
		MinClipBytes:         envOrDefaultInt("MEDSCRIBE_MIN_CLIP_BYTES", defaultInt(cfg.Session.MinClipBytes, 8000)),
		MinTranscriptEntries: envOrDefaultInt("MEDSCRIBE_MIN_TRANSCRIPT_ENTRIES", defaultInt(cfg.Session.MinTranscriptEntries, 2)),
		ChunkSize:            envOrDefaultInt("MEDSCRIBE_AUDIO_CHUNK_SIZE", defaultInt(cfg.Session.ChunkSize, 4096)),
		ClinicianLabel:       envOrDefault("MEDSCRIBE_CLINICIAN_LABEL", defaultString(cfg.Session.ClinicianLabel, "Clinician")),
		PatientLabel:         envOrDefault("MEDSCRIBE_PATIENT_LABEL", defaultString(cfg.Session.PatientLabel, "Patient")),
	}
	cfg.Store = StoreConfig{
		Path: envOrDefault("MEDSCRIBE_STORE_PATH", defaultString(cfg.Store.Path, "medscribe.sqlite")),
	}
	cfg.Metrics = MetricsConfig{
		Addr: envOrDefault("MEDSCRIBE_METRICS_ADDR", cfg.Metrics.Addr),
	}

	if cfg.Audio.SampleRate <= 0 {
		cfg.Audio.SampleRate = 16000
	}
	if cfg.Audio.Channels <= 0 {
		cfg.Audio.Channels = 1
	}
	if cfg.Session.ChunkSize < 256 {
		cfg.Session.ChunkSize = 4096
	}
	if cfg.Session.MinClipBytes < 0 {
		cfg.Session.MinClipBytes = 0
	}
	if cfg.Session.MinTranscriptEntries < 1 {
		cfg.Session.MinTranscriptEntries = 1
	}

	return cfg, nil
}

func defaultString(value string, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func defaultInt(value int, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
}

func defaultDuration(value time.Duration, fallback time.Duration) time.Duration {
	if value <= 0 {
		return fallback
	}
	return value
}

func envOrDefault(key string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envOrDefaultInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrDefaultDuration(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return fallback
	}
	return time.Duration(parsed) * time.Millisecond
}
