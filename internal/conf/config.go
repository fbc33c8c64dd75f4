package conf

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/lk2023060901/raven-ai/internal/ai/provider/types"
	"github.com/lk2023060901/raven-ai/internal/pkg/database"
	"github.com/lk2023060901/raven-ai/internal/pkg/logger"
	"github.com/lk2023060901/raven-ai/internal/pkg/redis"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix 环境变量前缀，如 RAVEN_SERVER_PORT
	EnvPrefix = "RAVEN"
	// EnvFilePathKey 指定 .env 文件路径的环境变量
	EnvFilePathKey = "ENV_FILE_PATH"
)

type Config struct {
	Server      ServerConfig                   `mapstructure:"server"`
	Database    database.Config                `mapstructure:"database"`
	Redis       redis.Config                   `mapstructure:"redis"`
	Log         logger.Config                  `mapstructure:"log"`
	Auth        AuthConfig                     `mapstructure:"auth"`
	Secret      SecretConfig                   `mapstructure:"secret"`
	Raven       RavenConfig                    `mapstructure:"raven"`
	AI          AIConfig                       `mapstructure:"ai"`
	Permissions map[string]map[string][]string `mapstructure:"permissions"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

type AuthConfig struct {
	JWTSecret    string        `mapstructure:"jwt_secret"`
	JWTIssuer    string        `mapstructure:"jwt_issuer"`
	SessionTTL   time.Duration `mapstructure:"session_ttl"`
	CookieName   string        `mapstructure:"cookie_name"`
	SecureCookie bool          `mapstructure:"secure_cookie"`
}

type SecretConfig struct {
	EncryptionKey string `mapstructure:"encryption_key"`
}

type IconsConfig struct {
	Icon96         string `mapstructure:"icon_96"`
	AppleTouchIcon string `mapstructure:"apple_touch_icon"`
	MaskIcon       string `mapstructure:"mask_icon"`
	FaviconSVG     string `mapstructure:"favicon_svg"`
	FaviconICO     string `mapstructure:"favicon_ico"`
}

type RavenConfig struct {
	AppName            string `mapstructure:"app_name"`
	SiteName           string `mapstructure:"sitename"`
	Lang               string `mapstructure:"lang"`
	BuildVersion       string `mapstructure:"build_version"`
	DeveloperMode      bool   `mapstructure:"developer_mode"`
	PushRelayServerURL string `mapstructure:"push_relay_server_url"`
	// 未配置时为 nil，视为开启
	ServerScriptEnabled *bool       `mapstructure:"server_script_enabled"`
	Icons               IconsConfig `mapstructure:"icons"`
}

type AIConfig struct {
	LocalLLMTimeout time.Duration `mapstructure:"local_llm_timeout"`
	SDKTimeout      time.Duration `mapstructure:"sdk_timeout"`
	AllowPrefixes   []string      `mapstructure:"allow_prefixes"`
	DenySubstrings  []string      `mapstructure:"deny_substrings"`
}

// LoadConfig 读取配置文件，环境变量优先于文件；path 为空时只使用默认值和环境变量
func LoadConfig(path string) (*Config, error) {
	if envFile := os.Getenv(EnvFilePathKey); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// 无默认值的键需要显式绑定才能从环境变量读取
	if err := v.BindEnv("raven.server_script_enabled"); err != nil {
		return nil, fmt.Errorf("failed to bind env: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.mode", "release")

	db := database.DefaultConfig()
	v.SetDefault("database.host", db.Host)
	v.SetDefault("database.port", db.Port)
	v.SetDefault("database.user", db.User)
	v.SetDefault("database.password", db.Password)
	v.SetDefault("database.dbname", db.DBName)
	v.SetDefault("database.sslmode", db.SSLMode)
	v.SetDefault("database.timezone", db.Timezone)
	v.SetDefault("database.maxidleconns", db.MaxIdleConns)
	v.SetDefault("database.maxopenconns", db.MaxOpenConns)
	v.SetDefault("database.connmaxlifetime", db.ConnMaxLifetime)
	v.SetDefault("database.loglevel", db.LogLevel)
	v.SetDefault("database.slowthreshold", db.SlowThreshold)
	v.SetDefault("database.automigrate", db.AutoMigrate)

	rc := redis.DefaultConfig()
	v.SetDefault("redis.addr", rc.Addr)
	v.SetDefault("redis.username", rc.Username)
	v.SetDefault("redis.password", rc.Password)
	v.SetDefault("redis.db", rc.DB)
	v.SetDefault("redis.pool_size", rc.PoolSize)
	v.SetDefault("redis.min_idle_conns", rc.MinIdleConns)
	v.SetDefault("redis.dial_timeout", rc.DialTimeout)
	v.SetDefault("redis.read_timeout", rc.ReadTimeout)
	v.SetDefault("redis.write_timeout", rc.WriteTimeout)
	v.SetDefault("redis.key_prefix", rc.KeyPrefix)

	lc := logger.DefaultConfig()
	v.SetDefault("log.level", lc.Level)
	v.SetDefault("log.format", lc.Format)
	v.SetDefault("log.output", lc.Output)
	v.SetDefault("log.file.filename", lc.File.Filename)
	v.SetDefault("log.file.maxsize", lc.File.MaxSize)
	v.SetDefault("log.file.maxage", lc.File.MaxAge)
	v.SetDefault("log.file.maxbackups", lc.File.MaxBackups)
	v.SetDefault("log.file.compress", lc.File.Compress)
	v.SetDefault("log.enablecaller", lc.EnableCaller)
	v.SetDefault("log.enablestacktrace", lc.EnableStacktrace)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.jwt_issuer", "raven")
	v.SetDefault("auth.session_ttl", 24*time.Hour)
	v.SetDefault("auth.cookie_name", "sid")
	v.SetDefault("auth.secure_cookie", false)

	v.SetDefault("secret.encryption_key", "")

	v.SetDefault("raven.app_name", "Eden")
	v.SetDefault("raven.sitename", "localhost")
	v.SetDefault("raven.lang", "en")
	v.SetDefault("raven.build_version", "")
	v.SetDefault("raven.developer_mode", false)
	v.SetDefault("raven.push_relay_server_url", "")
	v.SetDefault("raven.icons.icon_96", "raven/public/manifest/favicon-96x96.png")
	v.SetDefault("raven.icons.apple_touch_icon", "raven/public/manifest/apple-touch-icon.png")
	v.SetDefault("raven.icons.mask_icon", "frontend/public/safari-pinned-tab.svg")
	v.SetDefault("raven.icons.favicon_svg", "raven/public/manifest/favicon.svg")
	v.SetDefault("raven.icons.favicon_ico", "raven/public/manifest/favicon.ico")

	v.SetDefault("ai.local_llm_timeout", 5*time.Second)
	v.SetDefault("ai.sdk_timeout", 60*time.Second)
	v.SetDefault("ai.allow_prefixes", types.DefaultAllowPrefixes)
	v.SetDefault("ai.deny_substrings", types.DefaultDenySubstrings)
}

// Validate 校验启动服务所需的配置
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.New("server port must be between 1 and 65535")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}
	if c.Secret.EncryptionKey == "" {
		return errors.New("secret.encryption_key is required")
	}
	if c.AI.LocalLLMTimeout <= 0 || c.AI.SDKTimeout <= 0 {
		return errors.New("ai timeouts must be positive")
	}
	return nil
}

// Addr HTTP 监听地址
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
