package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 服务端配置
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Redis    RedisConfig    `yaml:"redis"`
	Game     GameConfig     `yaml:"game"`
	Security SecurityConfig `yaml:"security"`
}

// ServerConfig WebSocket 服务器配置
type ServerConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	MaxConnections int    `yaml:"max_connections"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// GameConfig 比赛节奏配置
type GameConfig struct {
	TrickPauseDelay int `yaml:"trick_pause_delay"` // 亮墩停顿（秒）
	HandEndDelay    int `yaml:"hand_end_delay"`    // 局间停顿（秒）
	BotThinkDelay   int `yaml:"bot_think_delay"`   // 机器人思考延迟（毫秒）
	ReconnectGrace  int `yaml:"reconnect_grace"`   // 掉线重连宽限（秒）
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	ConnPerSecond   int `yaml:"conn_per_second"`   // 每 IP 每秒最大连接数
	ConnPerMinute   int `yaml:"conn_per_minute"`   // 每 IP 每分钟最大连接数
	BanMinutes      int `yaml:"ban_minutes"`       // 超限封禁时长（分钟）
	MsgPerSecond    int `yaml:"msg_per_second"`    // 每连接每秒最大消息数
	ChatPerSecond   int `yaml:"chat_per_second"`   // 每连接每秒最大聊天数
	ChatCooldownSec int `yaml:"chat_cooldown_sec"` // 聊天超限冷却（秒）
}

// TrickPauseDuration 返回亮墩停顿时长
func (c *GameConfig) TrickPauseDuration() time.Duration {
	return time.Duration(c.TrickPauseDelay) * time.Second
}

// HandEndDuration 返回局间停顿时长
func (c *GameConfig) HandEndDuration() time.Duration {
	return time.Duration(c.HandEndDelay) * time.Second
}

// BotThinkDuration 返回机器人思考延迟
func (c *GameConfig) BotThinkDuration() time.Duration {
	return time.Duration(c.BotThinkDelay) * time.Millisecond
}

// ReconnectGraceDuration 返回重连宽限时长
func (c *GameConfig) ReconnectGraceDuration() time.Duration {
	return time.Duration(c.ReconnectGrace) * time.Second
}

// BanDuration 返回封禁时长
func (c *SecurityConfig) BanDuration() time.Duration {
	return time.Duration(c.BanMinutes) * time.Minute
}

// ChatCooldown 返回聊天冷却时长
func (c *SecurityConfig) ChatCooldown() time.Duration {
	return time.Duration(c.ChatCooldownSec) * time.Second
}

// Load 加载配置文件
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// applyDefaults 为零值字段填默认值
func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 1780
	}
	if c.Server.MaxConnections == 0 {
		c.Server.MaxConnections = 1024
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.Game.TrickPauseDelay == 0 {
		c.Game.TrickPauseDelay = 2
	}
	if c.Game.HandEndDelay == 0 {
		c.Game.HandEndDelay = 5
	}
	if c.Game.BotThinkDelay == 0 {
		c.Game.BotThinkDelay = 800
	}
	if c.Game.ReconnectGrace == 0 {
		c.Game.ReconnectGrace = 30
	}
	if c.Security.ConnPerSecond == 0 {
		c.Security.ConnPerSecond = 5
	}
	if c.Security.ConnPerMinute == 0 {
		c.Security.ConnPerMinute = 60
	}
	if c.Security.BanMinutes == 0 {
		c.Security.BanMinutes = 10
	}
	if c.Security.MsgPerSecond == 0 {
		c.Security.MsgPerSecond = 20
	}
	if c.Security.ChatPerSecond == 0 {
		c.Security.ChatPerSecond = 2
	}
	if c.Security.ChatCooldownSec == 0 {
		c.Security.ChatCooldownSec = 10
	}
}

// Default 返回默认配置
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}
