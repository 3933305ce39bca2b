package config

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/spf13/viper"
)

var (
	globalConfig Config
	once         sync.Once
)

// Config 扁平化配置结构体
type Config struct {
	// 服务器配置
	ServerHost         string        `mapstructure:"server_host"`
	ServerPort         int           `mapstructure:"server_port"`
	ServerBaseURL      string        `mapstructure:"server_base_url"`
	ServerReadTimeout  time.Duration `mapstructure:"server_read_timeout"`
	ServerWriteTimeout time.Duration `mapstructure:"server_write_timeout"`
	ServerIdleTimeout  time.Duration `mapstructure:"server_idle_timeout"`

	// 数据库配置
	DBType     string `mapstructure:"db_type"`
	DBHost     string `mapstructure:"db_host"`
	DBPort     int    `mapstructure:"db_port"`
	DBUsername string `mapstructure:"db_username"`
	DBPassword string `mapstructure:"db_password"`
	DBName     string `mapstructure:"db_name"`
	DBFilePath string `mapstructure:"db_file_path"`

	// Wikimedia API 配置
	CommonsAPI  string        `mapstructure:"commons_api"`
	WikidataAPI string        `mapstructure:"wikidata_api"`
	UserAgent   string        `mapstructure:"user_agent"`
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`

	// Bot 凭据（wbcreateclaim 需要）
	BotUsername string `mapstructure:"bot_username"`
	BotPassword string `mapstructure:"bot_password"`

	// 本地图库配置
	ContentDir       string `mapstructure:"content_dir"`
	UploadMaxSizeMB  int    `mapstructure:"upload_max_size_mb"`
	WebPQuality      int    `mapstructure:"webp_quality"`
	ThumbnailMaxDim  int    `mapstructure:"thumbnail_max_dim"`
	GalleryPageLimit int    `mapstructure:"gallery_page_limit"`

	// 限流配置
	RateLimitApiRPS     float64       `mapstructure:"rate_limit_api_rps"`
	RateLimitApiBurst   int           `mapstructure:"rate_limit_api_burst"`
	RateLimitExpireTime time.Duration `mapstructure:"rate_limit_expire_time"`
}

// Addr 返回监听地址
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// BaseURL 返回对外基础 URL
func (c *Config) BaseURL() string {
	if c.ServerBaseURL != "" {
		return c.ServerBaseURL
	}
	return fmt.Sprintf("http://%s", c.Addr())
}

// HasBotCredentials 检查是否配置了 bot 凭据
func (c *Config) HasBotCredentials() bool {
	return c.BotUsername != "" && c.BotPassword != ""
}

// InitConfig Initialize configuration
func InitConfig() {
	once.Do(func() {
		loadConfig()
	})
}

func Get() *Config {
	return &globalConfig
}

// loadConfig Core configuration loading
func loadConfig() {
	setDefaults()

	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintln(os.Stderr, "Info: .env file not found, using defaults and environment variables")
	} else {
		fmt.Fprintln(os.Stderr, "Info: Loaded configuration from .env file")
	}

	viper.AutomaticEnv()
	for _, key := range viper.AllKeys() {
		viper.BindEnv(key)
	}

	if err := viper.Unmarshal(&globalConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: Unable to unmarshal config, %v\n", err)
		os.Exit(1)
	}
}

// setDefaults 设置默认值
func setDefaults() {
	// 服务器配置默认值
	viper.SetDefault("server_host", "127.0.0.1")
	viper.SetDefault("server_port", 8080)
	viper.SetDefault("server_base_url", "")
	viper.SetDefault("server_read_timeout", "15s")
	viper.SetDefault("server_write_timeout", "60s")
	viper.SetDefault("server_idle_timeout", "120s")

	// 数据库配置默认值
	viper.SetDefault("db_type", "sqlite")
	viper.SetDefault("db_host", "localhost")
	viper.SetDefault("db_port", 5432)
	viper.SetDefault("db_username", "postgres")
	viper.SetDefault("db_password", "")
	viper.SetDefault("db_name", "depicts-editor")
	viper.SetDefault("db_file_path", "")

	// Wikimedia API 默认值
	viper.SetDefault("commons_api", "https://commons.wikimedia.org/w/api.php")
	viper.SetDefault("wikidata_api", "https://www.wikidata.org/w/api.php")
	viper.SetDefault("user_agent", "DepictsEditor/"+Version+" (https://github.com/anoixa/depicts-editor)")
	viper.SetDefault("http_timeout", "30s")

	// Bot 凭据默认为空，未配置时 /api/add_claim 返回 500
	viper.SetDefault("bot_username", "")
	viper.SetDefault("bot_password", "")

	// 本地图库默认值
	viper.SetDefault("content_dir", "./data/media")
	viper.SetDefault("upload_max_size_mb", 20)
	viper.SetDefault("webp_quality", 80)
	viper.SetDefault("thumbnail_max_dim", 300)
	viper.SetDefault("gallery_page_limit", 100)

	// 限流配置默认值
	viper.SetDefault("rate_limit_api_rps", 30.0)
	viper.SetDefault("rate_limit_api_burst", 60)
	viper.SetDefault("rate_limit_expire_time", "10m")
}
