package conf

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	MinIO    MinIOConfig
	Upload   UploadConfig
	Log      LogConfig
	Auth     AuthConfig
}

type ServerConfig struct {
	Host          string   `mapstructure:"host"`
	Port          int      `mapstructure:"port"`
	ClientOrigins []string `mapstructure:"client_origins"`
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

// UploadConfig controls the file upload pipeline. AllowedTypes is the MIME
// allow-list; anything not listed is rejected.
type UploadConfig struct {
	Backend      string   `mapstructure:"backend"` // disk, minio
	Dir          string   `mapstructure:"dir"`
	MaxFileSize  int64    `mapstructure:"max_file_size"`
	AllowedTypes []string `mapstructure:"allowed_types"`
	MinPageSize  int      `mapstructure:"min_page_size"`
	MaxPageSize  int      `mapstructure:"max_page_size"`
}

type LogConfig struct {
	Level            string        `mapstructure:"level"`
	Format           string        `mapstructure:"format"`
	Output           string        `mapstructure:"output"`
	File             FileLogConfig `mapstructure:"file"`
	EnableCaller     bool          `mapstructure:"enablecaller"`
	EnableStacktrace bool          `mapstructure:"enablestacktrace"`
}

type FileLogConfig struct {
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"maxsize"`
	MaxAge     int    `mapstructure:"maxage"`
	MaxBackups int    `mapstructure:"maxbackups"`
	Compress   bool   `mapstructure:"compress"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	JWTIssuer string        `mapstructure:"jwt_issuer"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

func LoadConfig(path string) (*Config, error) {
	viper.SetConfigFile(path)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Upload.Backend == "" {
		c.Upload.Backend = "disk"
	}
	if c.Upload.Dir == "" {
		c.Upload.Dir = "uploads"
	}
	if c.Upload.MaxFileSize <= 0 {
		c.Upload.MaxFileSize = 10 << 20
	}
	if len(c.Upload.AllowedTypes) == 0 {
		c.Upload.AllowedTypes = []string{"application/pdf", "image/jpeg", "image/png"}
	}
	if c.Upload.MinPageSize <= 0 {
		c.Upload.MinPageSize = 1
	}
	if c.Upload.MaxPageSize <= 0 {
		c.Upload.MaxPageSize = 100
	}
	if c.Auth.TokenTTL <= 0 {
		c.Auth.TokenTTL = 7 * 24 * time.Hour
	}
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
