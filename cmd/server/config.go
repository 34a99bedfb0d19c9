package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"scheduler-sim/dispatch/application"
	"scheduler-sim/dispatch/domain"

	"gopkg.in/yaml.v3"
)

type config struct {
	ListenAddr      string        `yaml:"listen_addr"`
	Backlog         int           `yaml:"backlog"`
	SlotCapacity    int           `yaml:"slot_capacity"`
	Mode            domain.Mode   `yaml:"scheduling_mode"`
	AcquireTimeout  time.Duration `yaml:"acquire_timeout"`
	PeekSize        int           `yaml:"peek_size"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	Policy application.PolicyConfig `yaml:"policy"`

	MetricsAddr string `yaml:"metrics_addr"`

	RateEnabled bool    `yaml:"rate_enabled"`
	RateRPS     float64 `yaml:"rate_rps"`
	RateBurst   int     `yaml:"rate_burst"`

	StatsRedisAddr     string        `yaml:"stats_redis_addr"`
	StatsRedisPassword string        `yaml:"-"`
	StatsRedisDB       int           `yaml:"stats_redis_db"`
	StatsPrefix        string        `yaml:"stats_prefix"`
	StatsTTL           time.Duration `yaml:"stats_ttl"`
	StatsBucket        string        `yaml:"stats_bucket"`

	NatsURL     string `yaml:"nats_url"`
	NatsSubject string `yaml:"nats_subject"`

	TracingEnabled bool   `yaml:"tracing_enabled"`
	TracingFile    string `yaml:"tracing_file"`

	LogLevel       int  `yaml:"log_level"`
	LogDevelopment bool `yaml:"log_development"`
}

func defaultConfig() config {
	return config{
		ListenAddr:      "0.0.0.0:8081",
		Backlog:         5,
		SlotCapacity:    3,
		Mode:            domain.ModeFIFO,
		PeekSize:        1024,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		Policy:          application.DefaultPolicyConfig(),
		RateRPS:         10,
		RateBurst:       20,
		StatsPrefix:     "scheduler:stats",
		StatsTTL:        24 * time.Hour,
		StatsBucket:     "minute",
		NatsSubject:     "scheduler.records",
	}
}

// readConfig aplica, nesta ordem: padrões, arquivo YAML de CONFIG_FILE (se houver)
// e variáveis de ambiente.
func readConfig() (config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return config{}, fmt.Errorf("read CONFIG_FILE: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return config{}, fmt.Errorf("parse CONFIG_FILE %s: %w", path, err)
		}
	}

	cfg.ListenAddr = getenvDefault("LISTEN_ADDR", cfg.ListenAddr)
	cfg.Backlog = getenvIntDefault("BACKLOG", cfg.Backlog)
	cfg.SlotCapacity = getenvIntDefault("SLOT_CAPACITY", cfg.SlotCapacity)
	if v := strings.TrimSpace(os.Getenv("SCHEDULING_MODE")); v != "" {
		m, err := domain.ParseMode(v)
		if err != nil {
			return config{}, fmt.Errorf("SCHEDULING_MODE: %w", err)
		}
		cfg.Mode = m
	}
	cfg.AcquireTimeout = getenvDurationDefault("ACQUIRE_TIMEOUT", cfg.AcquireTimeout)
	cfg.PeekSize = getenvIntDefault("PEEK_SIZE", cfg.PeekSize)
	cfg.ReadTimeout = getenvDurationDefault("READ_TIMEOUT", cfg.ReadTimeout)
	cfg.WriteTimeout = getenvDurationDefault("WRITE_TIMEOUT", cfg.WriteTimeout)
	cfg.ShutdownTimeout = getenvDurationDefault("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)

	cfg.Policy.FIFODuration = getenvDurationDefault("FIFO_DURATION", cfg.Policy.FIFODuration)
	cfg.Policy.RRBursts = getenvIntDefault("RR_BURSTS", cfg.Policy.RRBursts)
	cfg.Policy.RRBurstDuration = getenvDurationDefault("RR_BURST_DURATION", cfg.Policy.RRBurstDuration)
	cfg.Policy.PriorityMin = getenvDurationDefault("PRIORITY_MIN", cfg.Policy.PriorityMin)
	cfg.Policy.PriorityMax = getenvDurationDefault("PRIORITY_MAX", cfg.Policy.PriorityMax)

	cfg.MetricsAddr = getenvDefault("METRICS_ADDR", cfg.MetricsAddr)

	cfg.RateEnabled = getenvBoolDefault("RATE_ENABLED", cfg.RateEnabled)
	cfg.RateRPS = getenvFloatDefault("RATE_RPS", cfg.RateRPS)
	cfg.RateBurst = getenvIntDefault("RATE_BURST", cfg.RateBurst)

	cfg.StatsRedisAddr = getenvDefault("STATS_REDIS_ADDR", cfg.StatsRedisAddr)
	cfg.StatsRedisPassword = os.Getenv("STATS_REDIS_PASSWORD")
	cfg.StatsRedisDB = getenvIntDefault("STATS_REDIS_DB", cfg.StatsRedisDB)
	cfg.StatsPrefix = getenvDefault("STATS_PREFIX", cfg.StatsPrefix)
	cfg.StatsTTL = getenvDurationDefault("STATS_TTL", cfg.StatsTTL)
	cfg.StatsBucket = strings.ToLower(strings.TrimSpace(getenvDefault("STATS_BUCKET", cfg.StatsBucket)))

	cfg.NatsURL = getenvDefault("NATS_URL", cfg.NatsURL)
	cfg.NatsSubject = getenvDefault("NATS_SUBJECT", cfg.NatsSubject)

	cfg.TracingEnabled = getenvBoolDefault("TRACING_ENABLED", cfg.TracingEnabled)
	cfg.TracingFile = getenvDefault("TRACING_FILE", cfg.TracingFile)

	cfg.LogLevel = getenvIntDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.LogDevelopment = getenvBoolDefault("LOG_DEVELOPMENT", cfg.LogDevelopment)

	return cfg, cfg.validate()
}

func (cfg config) validate() error {
	if strings.TrimSpace(cfg.ListenAddr) == "" {
		return errors.New("LISTEN_ADDR is required")
	}
	if cfg.SlotCapacity <= 0 {
		return errors.New("SLOT_CAPACITY must be > 0")
	}
	if cfg.Backlog < 0 {
		return errors.New("BACKLOG must be >= 0")
	}
	if cfg.AcquireTimeout < 0 {
		return errors.New("ACQUIRE_TIMEOUT must be >= 0")
	}
	if cfg.Policy.FIFODuration < 0 || cfg.Policy.RRBurstDuration < 0 || cfg.Policy.PriorityMin < 0 {
		return errors.New("simulated durations must be >= 0")
	}
	if cfg.Policy.RRBursts <= 0 {
		return errors.New("RR_BURSTS must be > 0")
	}
	if cfg.Policy.PriorityMax < cfg.Policy.PriorityMin {
		return errors.New("PRIORITY_MAX must be >= PRIORITY_MIN")
	}
	if cfg.StatsBucket != "minute" && cfg.StatsBucket != "none" {
		return errors.New(`STATS_BUCKET must be "minute" or "none"`)
	}
	if cfg.RateEnabled && cfg.RateRPS <= 0 {
		return errors.New("RATE_RPS must be > 0")
	}
	if cfg.RateEnabled && cfg.RateBurst <= 0 {
		return errors.New("RATE_BURST must be > 0")
	}
	return nil
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvIntDefault(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getenvFloatDefault(k string, def float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getenvBoolDefault(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getenvDurationDefault(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
