package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("写入配置文件失败: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "auth:\n  jwt_secret: \"test-secret-0123456789\"\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load 应成功: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("期望端口 8080, 实际=%d", cfg.Server.Port)
	}
	b := cfg.Booking
	if b.MaxDurationHours != 3 || b.MinDurationHours != 1 || b.CutoffHours != 1 {
		t.Errorf("预约默认值不正确: %+v", b)
	}
	if b.Timezone != "Europe/Istanbul" || b.MaxRangeDays != 62 {
		t.Errorf("时区或查询区间默认值不正确: %+v", b)
	}
	if b.LockWait != 3*time.Second {
		t.Errorf("期望 lock_wait=3s, 实际=%s", b.LockWait)
	}
	if cfg.Auth.AccessTokenTTL != 30*time.Minute {
		t.Errorf("期望 access_token_ttl=30m, 实际=%s", cfg.Auth.AccessTokenTTL)
	}
	r := cfg.Registration
	if r.SchoolEmailDomain != "" || r.AutoActivateOnVerify || r.CodeTTL != 15*time.Minute {
		t.Errorf("注册默认值不正确: %+v", r)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, `
auth:
  jwt_secret: "test-secret-0123456789"
  bootstrap_admins:
    - "admin@btu.edu.tr"
registration:
  school_email_domain: "@ogr.btu.edu.tr"
`)
	t.Setenv("BOOKLAB_BOOKING_CUTOFF_HOURS", "2")
	t.Setenv("BOOKLAB_AUTH_JWT_SECRET", "env-secret-abcdefghijkl")
	t.Setenv("BOOKLAB_REGISTRATION_AUTO_ACTIVATE_ON_VERIFY", "true")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load 应成功: %v", err)
	}

	if cfg.Booking.CutoffHours != 2 {
		t.Errorf("期望环境变量覆盖 cutoff_hours=2, 实际=%d", cfg.Booking.CutoffHours)
	}
	if cfg.Auth.JWTSecret != "env-secret-abcdefghijkl" {
		t.Errorf("期望环境变量覆盖 jwt_secret, 实际=%s", cfg.Auth.JWTSecret)
	}
	if !cfg.Registration.AutoActivateOnVerify {
		t.Error("期望环境变量开启 auto_activate_on_verify")
	}
	if cfg.Registration.SchoolEmailDomain != "@ogr.btu.edu.tr" {
		t.Errorf("期望读取文件中的邮箱域, 实际=%s", cfg.Registration.SchoolEmailDomain)
	}
	if len(cfg.Auth.BootstrapAdmins) != 1 || cfg.Auth.BootstrapAdmins[0] != "admin@btu.edu.tr" {
		t.Errorf("期望读取初始管理员列表, 实际=%v", cfg.Auth.BootstrapAdmins)
	}
}

func TestLoad_MissingSecret(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9000\n")

	if _, err := Load(path); err == nil {
		t.Fatal("缺少 jwt_secret 时 Load 应失败")
	}
}

func validConfig() Config {
	return Config{
		Server: ServerConfig{Port: 8080},
		Auth:   AuthConfig{JWTSecret: "test-secret-0123456789"},
		Booking: BookingConfig{
			MaxDurationHours: 3,
			MinDurationHours: 1,
			CutoffHours:      1,
			Timezone:         "Europe/Istanbul",
			MaxRangeDays:     62,
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"Valid", func(c *Config) {}, ""},
		{"ShortSecret", func(c *Config) { c.Auth.JWTSecret = "short" }, "jwt_secret"},
		{"BadPort", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"ZeroMin", func(c *Config) { c.Booking.MinDurationHours = 0 }, "min_duration_hours"},
		{"MaxBelowMin", func(c *Config) { c.Booking.MaxDurationHours = 0 }, "max_duration_hours"},
		{"NegativeCutoff", func(c *Config) { c.Booking.CutoffHours = -1 }, "cutoff_hours"},
		{"ZeroRange", func(c *Config) { c.Booking.MaxRangeDays = 0 }, "max_range_days"},
		{"BadTimezone", func(c *Config) { c.Booking.Timezone = "Mars/Olympus" }, "timezone"},
		{"DomainWithoutAt", func(c *Config) { c.Registration.SchoolEmailDomain = "ogr.btu.edu.tr" }, "school_email_domain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate 应成功: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("期望错误包含 %q, 实际=%v", tt.wantErr, err)
			}
		})
	}
}
