package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Built-in defaults for settings that can be layered from CLI/env.
const (
	DefaultChannel    = "#random-coffee"
	DefaultTime       = "09:00"
	DefaultConfigPath = "/etc/random_coffee/config.json"
)

var (
	ErrMissingToken   = errors.New("no slack token: use --token, SLACK_BOT_TOKEN, or the config file")
	ErrInvalidClock   = errors.New("invalid time, expected HH:MM (24-hour)")
	ErrInvalidWeekday = errors.New("invalid weekday")
)

// Flags holds the raw CLI layer. Empty string means "not set".
type Flags struct {
	Token      string
	Channel    string
	Time       string
	ConfigPath string
}

// Env holds the environment layer, filled by envconfig. Settings that have
// no CLI or file layer carry their defaults here.
type Env struct {
	Token          string `envconfig:"SLACK_BOT_TOKEN"`
	Channel        string `envconfig:"RC_CHANNEL"`
	Time           string `envconfig:"RC_TIME"`
	Weekday        string `envconfig:"RC_WEEKDAY" default:"Tuesday"`
	ErrorRecipient string `envconfig:"RC_ERROR_RECIPIENT" default:"@dchebakov"`
	Exclude        string `envconfig:"RC_EXCLUDE"`         // comma-separated names to skip
	HistoryDays    int    `envconfig:"RC_HISTORY_DAYS" default:"30"`
	ConfigPath     string `envconfig:"RC_CONFIG"`
	OpenAIKey      string `envconfig:"OPENAI_API_KEY"`
	DBPath         string `envconfig:"DB_PATH" default:"./data/random_coffee.db"`
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"` // debug|info|warn|error
	LogFile        string `envconfig:"LOG_FILE" default:"random_coffee.log"`
	HTTPAddr       string `envconfig:"HTTP_ADDR" default:":8080"` // healthz
}

// FileConfig is the JSON config file layer.
type FileConfig struct {
	SlackToken   string `json:"slack_token"`
	OpenAIAPIKey string `json:"openai_api_key"`
}

// Config is the resolved, immutable configuration for the process lifetime.
type Config struct {
	Token          string
	Channel        string
	Weekday        time.Weekday
	TriggerM       int // minutes since midnight, UTC
	ErrorRecipient string
	Exclude        []string
	HistoryDays    int
	OpenAIKey      string
	DBPath         string
	LogLevel       string
	LogFile        string
	HTTPAddr       string
}

// Load reads all four layers and resolves them. A missing or invalid token
// is fatal to the caller; everything else has a usable default.
func Load(flags Flags) (Config, error) {
	// .env is optional and only feeds the environment layer.
	_ = godotenv.Load()

	var env Env
	if err := envconfig.Process("", &env); err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}

	path := coalesce(flags.ConfigPath, env.ConfigPath, DefaultConfigPath)
	file, err := readFile(path)
	if err != nil {
		return Config{}, err
	}

	return Resolve(flags, env, file)
}

// Resolve merges the layers with precedence CLI > env > config file >
// built-in default and validates the result. Pure: no I/O.
func Resolve(flags Flags, env Env, file *FileConfig) (Config, error) {
	cfg := Config{
		Token:          coalesce(flags.Token, env.Token),
		Channel:        coalesce(flags.Channel, env.Channel, DefaultChannel),
		ErrorRecipient: env.ErrorRecipient,
		Exclude:        splitList(env.Exclude),
		HistoryDays:    env.HistoryDays,
		OpenAIKey:      env.OpenAIKey,
		DBPath:         env.DBPath,
		LogLevel:       env.LogLevel,
		LogFile:        env.LogFile,
		HTTPAddr:       env.HTTPAddr,
	}
	if file != nil {
		cfg.Token = coalesce(cfg.Token, file.SlackToken)
		cfg.OpenAIKey = coalesce(cfg.OpenAIKey, file.OpenAIAPIKey)
	}
	if cfg.Token == "" {
		return Config{}, ErrMissingToken
	}

	triggerM, err := ParseClock(coalesce(flags.Time, env.Time, DefaultTime))
	if err != nil {
		return Config{}, err
	}
	cfg.TriggerM = triggerM

	weekday, err := ParseWeekday(env.Weekday)
	if err != nil {
		return Config{}, err
	}
	cfg.Weekday = weekday

	return cfg, nil
}

// readFile loads the JSON config file layer. A missing file is not an
// error; the remaining layers must carry the configuration then.
func readFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var fc FileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &fc, nil
}

// ParseClock parses "HH:MM" (24-hour) into minutes since midnight.
func ParseClock(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	return h*60 + m, nil
}

// ParseWeekday accepts full English weekday names, case-insensitive.
func ParseWeekday(s string) (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.ToLower(d.String()) == name {
			return d, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidWeekday, s)
}

// FormatClock returns HH:MM for minutes since midnight.
func FormatClock(mins int) string {
	return fmt.Sprintf("%02d:%02d", mins/60, mins%60)
}

func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
