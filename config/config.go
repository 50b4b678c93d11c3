package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"db"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Auth         AuthConfig         `mapstructure:"auth"`
	Mail         MailConfig         `mapstructure:"mail"`
	Log          LogConfig          `mapstructure:"log"`
	Booking      BookingConfig      `mapstructure:"booking"`
	Registration RegistrationConfig `mapstructure:"registration"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port    int        `mapstructure:"port"`
	BaseURL string     `mapstructure:"base_url"`
	CORS    CORSConfig `mapstructure:"cors"`
}

// CORSConfig 跨域配置，AllowOrigins 含 "*" 时放行任意来源但不携带凭证
type CORSConfig struct {
	AllowOrigins []string      `mapstructure:"allow_origins"`
	MaxAge       time.Duration `mapstructure:"max_age"`
}

// DatabaseConfig PostgreSQL 数据库配置
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	LogLevel        string `mapstructure:"log_level"` // silent | error | warn | info
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // 分钟
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // 分钟
}

// DSN 生成 PostgreSQL 连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis 配置，Addr 为空时不启用 Redis
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig JWT 认证配置
type AuthConfig struct {
	JWTSecret       string        `mapstructure:"jwt_secret"`
	AccessTokenTTL  time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTL time.Duration `mapstructure:"refresh_token_ttl"`
	// BootstrapAdmins 启动时提升为管理员的已注册邮箱
	BootstrapAdmins []string `mapstructure:"bootstrap_admins"`
}

// MailConfig SMTP 邮件配置，SMTPHost 为空时通知只写日志
type MailConfig struct {
	SMTPHost string `mapstructure:"smtp_host"`
	SMTPPort int    `mapstructure:"smtp_port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	// SendTimeout 单封邮件发送超时
	SendTimeout time.Duration `mapstructure:"send_timeout"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json | console
	// Outputs 日志输出位置，stdout/stderr 或文件路径
	Outputs []string `mapstructure:"outputs"`
}

// BookingConfig 预约规则配置
type BookingConfig struct {
	MaxDurationHours int    `mapstructure:"max_duration_hours"`
	MinDurationHours int    `mapstructure:"min_duration_hours"`
	CutoffHours      int    `mapstructure:"cutoff_hours"`
	Timezone         string `mapstructure:"timezone"`
	MaxRangeDays     int    `mapstructure:"max_range_days"`
	// LockTTL 时段锁的过期时间（仅 Redis 锁使用）
	LockTTL time.Duration `mapstructure:"lock_ttl"`
	// LockWait 获取时段锁的最长等待时间
	LockWait time.Duration `mapstructure:"lock_wait"`
}

// Location 解析预约时区
func (c *BookingConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// RegistrationConfig 注册流程配置
type RegistrationConfig struct {
	// SchoolEmailDomain 非空时只允许该后缀的邮箱注册，例如 "@ogr.btu.edu.tr"
	SchoolEmailDomain string `mapstructure:"school_email_domain"`
	// AutoActivateOnVerify 邮箱验证后是否自动激活账号；默认 false，只有工作人员可以激活
	AutoActivateOnVerify bool          `mapstructure:"auto_activate_on_verify"`
	CodeTTL              time.Duration `mapstructure:"code_ttl"`
}

// Load 从配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	v := viper.New()

	// ── 默认值 ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})
	v.SetDefault("server.cors.max_age", "24h")

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "booklab")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "Europe/Istanbul")
	v.SetDefault("db.log_level", "warn")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)
	v.SetDefault("db.conn_max_idle_time", 30)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.access_token_ttl", "30m")
	v.SetDefault("auth.refresh_token_ttl", "168h")
	v.SetDefault("auth.bootstrap_admins", []string{})

	v.SetDefault("mail.smtp_port", 587)
	v.SetDefault("mail.send_timeout", "10s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.outputs", []string{"stdout"})

	v.SetDefault("booking.max_duration_hours", 3)
	v.SetDefault("booking.min_duration_hours", 1)
	v.SetDefault("booking.cutoff_hours", 1)
	v.SetDefault("booking.timezone", "Europe/Istanbul")
	v.SetDefault("booking.max_range_days", 62)
	v.SetDefault("booking.lock_ttl", "10s")
	v.SetDefault("booking.lock_wait", "3s")

	v.SetDefault("registration.school_email_domain", "")
	v.SetDefault("registration.auto_activate_on_verify", false)
	v.SetDefault("registration.code_ttl", "15m")

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("BOOKLAB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 不能为空")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 长度不能少于 16 字符")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}

	b := c.Booking
	if b.MinDurationHours <= 0 {
		return fmt.Errorf("配置校验失败: booking.min_duration_hours 必须大于 0")
	}
	if b.MaxDurationHours < b.MinDurationHours || b.MaxDurationHours > 24 {
		return fmt.Errorf("配置校验失败: booking.max_duration_hours 必须在 min_duration_hours 与 24 之间")
	}
	if b.CutoffHours < 0 {
		return fmt.Errorf("配置校验失败: booking.cutoff_hours 不能为负数")
	}
	if b.MaxRangeDays <= 0 {
		return fmt.Errorf("配置校验失败: booking.max_range_days 必须大于 0")
	}
	if _, err := b.Location(); err != nil {
		return fmt.Errorf("配置校验失败: booking.timezone 无效: %w", err)
	}
	if d := c.Registration.SchoolEmailDomain; d != "" && !strings.HasPrefix(d, "@") {
		return fmt.Errorf("配置校验失败: registration.school_email_domain 必须以 @ 开头")
	}
	return nil
}
