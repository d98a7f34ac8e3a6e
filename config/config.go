package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
	Auth   AuthConfig   `yaml:"auth"`
	Users  []User       `yaml:"users"`
	OpenAI OpenAIConfig `yaml:"openai"`
	Sender SenderConfig `yaml:"sender"`
	Schema SchemaConfig `yaml:"schema"`
	Store  StoreConfig  `yaml:"store"`
	Minio  MinioConfig  `yaml:"minio"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type AuthConfig struct {
	JWTSecret        string `yaml:"jwt_secret"`
	TokenExpireHours int    `yaml:"token_expire_hours"`
}

type User struct {
	Username     string `yaml:"username"`
	PasswordHash string `yaml:"password_hash"` // bcrypt
}

// OpenAIConfig drives the date-phrase normalizer. DateFormat is the
// canonical target format the prompt asks for; BatchSize bounds the
// number of phrases per completion request.
type OpenAIConfig struct {
	APIURL          string `yaml:"api_url"`
	APIKey          string `yaml:"api_key"`
	Model           string `yaml:"model"`
	MaxOutputTokens int    `yaml:"max_output_tokens"`
	BatchSize       int    `yaml:"batch_size"`
	DateFormat      string `yaml:"date_format"`
}

// SenderConfig is the sender identity stamped on every carrier order
// row. ExampleFile, when set and readable, overrides the static values
// with the first row of a previously submitted order file.
type SenderConfig struct {
	Name        string `yaml:"name"`
	Phone       string `yaml:"phone"`
	Address     string `yaml:"address"`
	ExampleFile string `yaml:"example_file"`
}

// SchemaConfig points at previously downloaded marketplace bulk files
// whose header rows define the output column order. Both are optional;
// hard-coded fallbacks keep the builders working offline.
type SchemaConfig struct {
	NaverBulkExample   string `yaml:"naver_bulk_example"`
	CoupangBulkExample string `yaml:"coupang_bulk_example"`
}

type StoreConfig struct {
	MaxWorkflows int `yaml:"max_workflows"`
	MaxDownloads int `yaml:"max_downloads"`
}

type MinioConfig struct {
	Endpoint   string `yaml:"endpoint"`
	AccessKey  string `yaml:"access_key"`
	SecretKey  string `yaml:"secret_key"`
	Bucket     string `yaml:"bucket"`
	UseSSL     bool   `yaml:"use_ssl"`
	ExpireDays int    `yaml:"expire_days"`
}

var GlobalConfig *Config

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Auth.TokenExpireHours == 0 {
		cfg.Auth.TokenExpireHours = 24
	}
	if cfg.OpenAI.APIURL == "" {
		cfg.OpenAI.APIURL = "https://api.openai.com/v1"
	}
	if cfg.OpenAI.Model == "" {
		cfg.OpenAI.Model = "gpt-4.1-nano"
	}
	if cfg.OpenAI.MaxOutputTokens == 0 {
		cfg.OpenAI.MaxOutputTokens = 1000
	}
	if cfg.OpenAI.BatchSize == 0 {
		cfg.OpenAI.BatchSize = 50
	}
	if cfg.OpenAI.DateFormat == "" {
		cfg.OpenAI.DateFormat = "MM/DD"
	}
	if cfg.Store.MaxWorkflows == 0 {
		cfg.Store.MaxWorkflows = 100
	}
	if cfg.Store.MaxDownloads == 0 {
		cfg.Store.MaxDownloads = 100
	}
	if cfg.Minio.ExpireDays == 0 {
		cfg.Minio.ExpireDays = 7
	}

	GlobalConfig = &cfg
	return &cfg, nil
}

// FindUser finds a user by username
func (c *Config) FindUser(username string) *User {
	for i := range c.Users {
		if c.Users[i].Username == username {
			return &c.Users[i]
		}
	}
	return nil
}
