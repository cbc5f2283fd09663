package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type ServerCfg struct {
	Port                string `mapstructure:"port"`
	ReadTimeoutSeconds  int    `mapstructure:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `mapstructure:"write_timeout_seconds"`
}

type MongoCfg struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type RedisCfg struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type KafkaCfg struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
	GroupID string   `mapstructure:"group_id"`
}

type EmailCfg struct {
	BrevoAPIKey string `mapstructure:"brevo_api_key"`
	SenderEmail string `mapstructure:"sender_email"`
	SenderName  string `mapstructure:"sender_name"`
}

type SMSCfg struct {
	TwilioSID   string `mapstructure:"twilio_account_sid"`
	TwilioToken string `mapstructure:"twilio_auth_token"`
	FromPhone   string `mapstructure:"from_phone"`
}

type JWTCfg struct {
	Secret string `mapstructure:"secret"`
}

type DispatchCfg struct {
	ChannelTimeoutSeconds int `mapstructure:"channel_timeout_seconds"`
}

type LogCfg struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

type Config struct {
	Server   ServerCfg   `mapstructure:"server"`
	Mongo    MongoCfg    `mapstructure:"mongo"`
	Redis    RedisCfg    `mapstructure:"redis"`
	Kafka    KafkaCfg    `mapstructure:"kafka"`
	Email    EmailCfg    `mapstructure:"email"`
	SMS      SMSCfg      `mapstructure:"sms"`
	JWT      JWTCfg      `mapstructure:"jwt"`
	Dispatch DispatchCfg `mapstructure:"dispatch"`
	Log      LogCfg      `mapstructure:"log"`

	// Derived
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	ChannelTimeout time.Duration
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.AutomaticEnv()
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.Server.Port == "" {
		cfg.Server.Port = "8085"
	}
	if cfg.Server.ReadTimeoutSeconds == 0 {
		cfg.Server.ReadTimeoutSeconds = 15
	}
	if cfg.Server.WriteTimeoutSeconds == 0 {
		cfg.Server.WriteTimeoutSeconds = 15
	}
	if cfg.Dispatch.ChannelTimeoutSeconds == 0 {
		cfg.Dispatch.ChannelTimeoutSeconds = 10
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = "notification-service"
	}
	cfg.ReadTimeout = time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second
	cfg.WriteTimeout = time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second
	cfg.ChannelTimeout = time.Duration(cfg.Dispatch.ChannelTimeoutSeconds) * time.Second
	return &cfg, nil
}
