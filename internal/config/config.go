package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr         string
	Port               string
	DatabasePath       string
	SessionSecret      string
	GinMode            string
	UploadDir          string
	UploadURLPath      string
	BootstrapUserName  string
	BootstrapPassword  string
	LogLevel           string
	StatsRefresh       string
	LoginRatePerMinute int
}

// fileConfig 是 FUNGO_CONFIG 指向的 YAML 文件结构，环境变量优先级更高。
type fileConfig struct {
	ListenAddr         string `yaml:"listen_addr"`
	Port               string `yaml:"port"`
	DatabasePath       string `yaml:"database_path"`
	SessionSecret      string `yaml:"session_secret"`
	GinMode            string `yaml:"gin_mode"`
	UploadDir          string `yaml:"upload_dir"`
	UploadURLPath      string `yaml:"upload_url_path"`
	BootstrapUserName  string `yaml:"bootstrap_user_name"`
	BootstrapPassword  string `yaml:"bootstrap_password"`
	LogLevel           string `yaml:"log_level"`
	StatsRefresh       string `yaml:"stats_refresh"`
	LoginRatePerMinute int    `yaml:"login_rate_per_minute"`
}

// Load 从环境变量（以及可选的 YAML 文件）读取应用配置，并为缺失项提供安全的默认值。
func Load() (AppConfig, error) {
	var file fileConfig
	if path := strings.TrimSpace(os.Getenv("FUNGO_CONFIG")); path != "" {
		loaded, err := readFile(path)
		if err != nil {
			return AppConfig{}, err
		}
		file = loaded
	}

	port := pick("PORT", file.Port, "8080")

	listenAddr := pick("LISTEN_ADDR", file.ListenAddr, "")
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	rate := file.LoginRatePerMinute
	if raw := strings.TrimSpace(os.Getenv("LOGIN_RATE_PER_MINUTE")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return AppConfig{}, fmt.Errorf("LOGIN_RATE_PER_MINUTE: %w", err)
		}
		rate = parsed
	}
	if rate <= 0 {
		rate = 10
	}

	return AppConfig{
		ListenAddr:         listenAddr,
		Port:               port,
		DatabasePath:       pick("DATABASE_PATH", file.DatabasePath, "fungo.db"),
		SessionSecret:      pick("SESSION_SECRET", file.SessionSecret, "fungo-dev-secret"),
		GinMode:            pick("GIN_MODE", file.GinMode, "release"),
		UploadDir:          pick("UPLOAD_DIR", file.UploadDir, "media"),
		UploadURLPath:      pick("UPLOAD_URL_PATH", file.UploadURLPath, "/media"),
		BootstrapUserName:  pick("BOOTSTRAP_USER_NAME", file.BootstrapUserName, ""),
		BootstrapPassword:  pick("BOOTSTRAP_PASSWORD", file.BootstrapPassword, ""),
		LogLevel:           pick("LOG_LEVEL", file.LogLevel, "info"),
		StatsRefresh:       pick("STATS_REFRESH", file.StatsRefresh, "@every 1m"),
		LoginRatePerMinute: rate,
	}, nil
}

func readFile(path string) (fileConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fileConfig{}, fmt.Errorf("read config file: %w", err)
	}

	var file fileConfig
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fileConfig{}, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return file, nil
}

func pick(envKey, fromFile, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(envKey)); value != "" {
		return value
	}
	if value := strings.TrimSpace(fromFile); value != "" {
		return value
	}
	return fallback
}
