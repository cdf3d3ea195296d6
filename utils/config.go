package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides, e.g. CHATANALYZER_REQUEST_RETRIES
const EnvPrefix = "CHATANALYZER"

// Config represents the application configuration
type Config struct {
	Baidu       BaiduConfig       `mapstructure:"baidu" json:"baidu"`
	Credentials CredentialsConfig `mapstructure:"credentials" json:"credentials"`
	Request     RequestConfig     `mapstructure:"request" json:"request"`
	Data        DataConfig        `mapstructure:"data" json:"data"`
	Analysis    AnalysisConfig    `mapstructure:"analysis" json:"analysis"`
	Log         LogConfig         `mapstructure:"log" json:"log"`
}

// BaiduConfig holds the sentiment API endpoints and client credentials.
// Keys are usually left empty in the file and supplied through .env.
type BaiduConfig struct {
	APIKey       string `mapstructure:"api_key" json:"api_key"`
	SecretKey    string `mapstructure:"secret_key" json:"secret_key"`
	TokenURL     string `mapstructure:"token_url" json:"token_url"`
	SentimentURL string `mapstructure:"sentiment_url" json:"sentiment_url"`
}

// CredentialsConfig locates the token files
type CredentialsConfig struct {
	AccessTokenPath  string `mapstructure:"access_token_path" json:"access_token_path"`
	RefreshTokenPath string `mapstructure:"refresh_token_path" json:"refresh_token_path"`
}

// RequestConfig controls the per-message API calls
type RequestConfig struct {
	Retries             int     `mapstructure:"retries" json:"retries"`
	TimeoutSeconds      int     `mapstructure:"timeout_seconds" json:"timeout_seconds"`
	BatchSize           int     `mapstructure:"batch_size" json:"batch_size"`
	Backoff             string  `mapstructure:"backoff" json:"backoff"` // "none", "constant", "exponential"
	BackoffSeconds      float64 `mapstructure:"backoff_seconds" json:"backoff_seconds"`
	RedactBeforeRequest bool    `mapstructure:"redact_before_request" json:"redact_before_request"`
}

// DataConfig represents file locations used by the pipeline modes
type DataConfig struct {
	SampleInputPath    string `mapstructure:"sample_input_path" json:"sample_input_path"`
	SampleOutputPath   string `mapstructure:"sample_output_path" json:"sample_output_path"`
	SampleSize         int    `mapstructure:"sample_size" json:"sample_size"`
	ChatDataPath       string `mapstructure:"chat_data_path" json:"chat_data_path"`
	APIOutputPath      string `mapstructure:"api_output_path" json:"api_output_path"`
	AnalysisOutputPath string `mapstructure:"analysis_output_path" json:"analysis_output_path"`
	ReportDir          string `mapstructure:"report_dir" json:"report_dir"`
	DBPath             string `mapstructure:"db_path" json:"db_path"`
}

// AnalysisConfig tunes the report
type AnalysisConfig struct {
	Tokenizer string `mapstructure:"tokenizer" json:"tokenizer"` // "gse" or "simple"
	Term      string `mapstructure:"term" json:"term"`
	TopWords  int    `mapstructure:"top_words" json:"top_words"`
}

// DefaultConfig returns the built-in configuration
func DefaultConfig() *Config {
	return &Config{
		Baidu: BaiduConfig{
			TokenURL:     "https://aip.baidubce.com/oauth/2.0/token",
			SentimentURL: "https://aip.baidubce.com/rpc/2.0/nlp/v1/sentiment_classify",
		},
		Credentials: CredentialsConfig{
			AccessTokenPath:  "access_token.txt",
			RefreshTokenPath: "refresh_token.txt",
		},
		Request: RequestConfig{
			Retries:        5,
			TimeoutSeconds: 15,
			BatchSize:      100,
			Backoff:        "none",
			BackoffSeconds: 1,
		},
		Data: DataConfig{
			SampleInputPath:    "path_to_your_sample_chat_data.csv",
			SampleOutputPath:   "sentiment_analysis_sample_results.csv",
			SampleSize:         100,
			ChatDataPath:       "path_to_your_full_chat_data.csv",
			APIOutputPath:      "sentiment_api_results.csv",
			AnalysisOutputPath: "sentiment_analysis_final.csv",
			ReportDir:          "./report",
			DBPath:             "./data/chat.db",
		},
		Analysis: AnalysisConfig{
			Tokenizer: "gse",
			Term:      "哈",
			TopWords:  50,
		},
		Log: LogConfig{
			Level: "info",
			Path:  GetLogPath(),
		},
	}
}

// setDefaults registers every key so environment overrides apply on Unmarshal
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("baidu.api_key", cfg.Baidu.APIKey)
	v.SetDefault("baidu.secret_key", cfg.Baidu.SecretKey)
	v.SetDefault("baidu.token_url", cfg.Baidu.TokenURL)
	v.SetDefault("baidu.sentiment_url", cfg.Baidu.SentimentURL)
	v.SetDefault("credentials.access_token_path", cfg.Credentials.AccessTokenPath)
	v.SetDefault("credentials.refresh_token_path", cfg.Credentials.RefreshTokenPath)
	v.SetDefault("request.retries", cfg.Request.Retries)
	v.SetDefault("request.timeout_seconds", cfg.Request.TimeoutSeconds)
	v.SetDefault("request.batch_size", cfg.Request.BatchSize)
	v.SetDefault("request.backoff", cfg.Request.Backoff)
	v.SetDefault("request.backoff_seconds", cfg.Request.BackoffSeconds)
	v.SetDefault("request.redact_before_request", cfg.Request.RedactBeforeRequest)
	v.SetDefault("data.sample_input_path", cfg.Data.SampleInputPath)
	v.SetDefault("data.sample_output_path", cfg.Data.SampleOutputPath)
	v.SetDefault("data.sample_size", cfg.Data.SampleSize)
	v.SetDefault("data.chat_data_path", cfg.Data.ChatDataPath)
	v.SetDefault("data.api_output_path", cfg.Data.APIOutputPath)
	v.SetDefault("data.analysis_output_path", cfg.Data.AnalysisOutputPath)
	v.SetDefault("data.report_dir", cfg.Data.ReportDir)
	v.SetDefault("data.db_path", cfg.Data.DBPath)
	v.SetDefault("analysis.tokenizer", cfg.Analysis.Tokenizer)
	v.SetDefault("analysis.term", cfg.Analysis.Term)
	v.SetDefault("analysis.top_words", cfg.Analysis.TopWords)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.path", cfg.Log.Path)
	v.SetDefault("log.dev_mode", cfg.Log.DevMode)
}

// LoadConfig loads configuration from file, .env and the environment.
// An empty configPath uses defaults plus environment only.
func LoadConfig(configPath string) (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Plain BAIDU_* variables, the names a .env file usually carries
	if config.Baidu.APIKey == "" {
		config.Baidu.APIKey = os.Getenv("BAIDU_API_KEY")
	}
	if config.Baidu.SecretKey == "" {
		config.Baidu.SecretKey = os.Getenv("BAIDU_SECRET_KEY")
	}

	// Expand paths
	config.Data.DBPath = expandPath(config.Data.DBPath)
	config.Data.ReportDir = expandPath(config.Data.ReportDir)
	config.Credentials.AccessTokenPath = expandPath(config.Credentials.AccessTokenPath)
	config.Credentials.RefreshTokenPath = expandPath(config.Credentials.RefreshTokenPath)

	return &config, nil
}

// loadDotEnv reads ./.env when present
func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// SaveConfig saves configuration to file
func SaveConfig(configPath string, config *Config) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Ensure directory exists
	if err := EnsureDir(filepath.Dir(configPath)); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// expandPath expands ~ and relative paths
func expandPath(path string) string {
	if len(path) == 0 {
		return path
	}

	// Expand ~
	if path[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[1:])
		}
	}

	// Make absolute
	absPath, err := filepath.Abs(path)
	if err == nil {
		return absPath
	}

	return path
}

// GetConfigPath returns the default config path
func GetConfigPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		// Fallback to current directory
		return "./config/default.json"
	}

	return filepath.Join(configDir, "chat-analyzer", "config.json")
}

// EnsureDefaultConfig creates a default config file if it doesn't exist
func EnsureDefaultConfig() (string, error) {
	configPath := GetConfigPath()

	if FileExists(configPath) {
		return configPath, nil
	}

	defaultConfig := DefaultConfig()
	// The dated log file name is resolved per run, not frozen into the file
	defaultConfig.Log.Path = ""

	if err := SaveConfig(configPath, defaultConfig); err != nil {
		return "", err
	}

	return configPath, nil
}
