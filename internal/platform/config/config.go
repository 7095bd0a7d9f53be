package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultFile：默认的配置文件名，可用 CLCK_CONFIG 环境变量覆盖。
const DefaultFile = "clck.properties"

type Config struct {
	// 短链生命周期
	LinkTTL           time.Duration // 创建到过期的偏移量
	DefaultClickLimit int           // create 未指定配额时的默认值
	ShortCodeLength   int           // 短码长度
	ShortDomain       string        // 展示用短域名，例如 clck.ru/{code}

	// 后台清理
	CleanupInterval time.Duration

	// 通知
	NotificationsEnabled bool

	// 日志配置信息
	LogLevel  slog.Level
	LogFormat string
}

// Load 加载配置：内置默认值 -> 配置文件（key=value properties）-> 环境变量。
//
// 行为约定：
// - 文件不存在：stderr 提示一行，全部用默认值
// - 某个整数键的值写坏了：stderr 警告一行，该键退回默认值，其余键不受影响
func Load(path string) Config {
	cfg := Config{
		LinkTTL:           24 * time.Hour,
		DefaultClickLimit: 10,
		ShortCodeLength:   6,
		ShortDomain:       "clck.ru",

		CleanupInterval: 5 * time.Minute,

		NotificationsEnabled: true,

		LogLevel:  slog.LevelInfo,
		LogFormat: "text",
	}

	props, err := godotenv.Read(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %s not found, using defaults\n", path)
		props = map[string]string{}
	}

	cfg.LinkTTL = time.Duration(intProp(props, "link.ttl.hours", 24)) * time.Hour
	cfg.DefaultClickLimit = intProp(props, "link.default.click.limit", 10)
	cfg.ShortCodeLength = intProp(props, "link.short.code.length", 6)
	if v, ok := props["link.short.domain"]; ok && v != "" {
		cfg.ShortDomain = v
	}
	cfg.CleanupInterval = time.Duration(intProp(props, "cleanup.interval.minutes", 5)) * time.Minute
	if v, ok := props["notifications.enabled"]; ok && v != "" {
		cfg.NotificationsEnabled = strings.ToLower(v) == "true"
	}

	if v, ok := os.LookupEnv("LOG_LEVEL"); ok && v != "" {
		switch strings.ToLower(v) {
		case "debug":
			cfg.LogLevel = slog.LevelDebug
		case "info":
			cfg.LogLevel = slog.LevelInfo
		case "warn", "warning":
			cfg.LogLevel = slog.LevelWarn
		case "error":
			cfg.LogLevel = slog.LevelError
		default:
			cfg.LogLevel = slog.LevelInfo
		}
	}
	if v, ok := os.LookupEnv("LOG_FORMAT"); ok && v != "" {
		cfg.LogFormat = v
	}

	return cfg
}

// File 返回配置文件路径：CLCK_CONFIG 优先，否则用默认文件名。
func File() string {
	if v, ok := os.LookupEnv("CLCK_CONFIG"); ok && v != "" {
		return v
	}
	return DefaultFile
}

// intProp 读取一个整数键；值写坏或非正时警告并退回默认值。
func intProp(props map[string]string, key string, def int) int {
	v, ok := props[key]
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		fmt.Fprintf(os.Stderr, "warning: invalid value for %s: %q, using default %d\n", key, v, def)
		return def
	}
	return n
}
