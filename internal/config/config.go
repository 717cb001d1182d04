package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config 全局配置结构
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	MySQL    MySQLConfig    `mapstructure:"mysql"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Razorpay RazorpayConfig `mapstructure:"razorpay"`
	Twilio   TwilioConfig   `mapstructure:"twilio"`
	Admin    AdminConfig    `mapstructure:"admin"`
	Business BusinessConfig `mapstructure:"business"`
}

type ServerConfig struct {
	Port          int    `mapstructure:"port"`
	PublicBaseURL string `mapstructure:"public_base_url"` // 扫码菜单页的对外地址
}

type MySQLConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type KafkaConfig struct {
	Brokers []string         `mapstructure:"brokers"`
	Topic   KafkaTopicConfig `mapstructure:"topic"`
}

type KafkaTopicConfig struct {
	OrderCreated string `mapstructure:"order_created"`
}

// RazorpayConfig 支付网关配置
// KeyID/KeySecret 只从环境变量读取，不写在配置文件里
type RazorpayConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	KeyID     string `mapstructure:"-"`
	KeySecret string `mapstructure:"-"`
}

// TwilioConfig 短信网关配置
// AccountSID/AuthToken/FromNumber 只从环境变量读取
type TwilioConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	AccountSID string `mapstructure:"-"`
	AuthToken  string `mapstructure:"-"`
	FromNumber string `mapstructure:"-"`
}

type AdminConfig struct {
	Key string `mapstructure:"-"` // 管理后台密钥，环境变量 ADMIN_KEY
}

type BusinessConfig struct {
	Currency      string  `mapstructure:"currency"`        // 结算币种，固定 INR
	PlatformFee   float64 `mapstructure:"platform_fee"`    // UPI 支付的固定平台费（卢比）
	CountryCode   string  `mapstructure:"country_code"`    // 手机号默认国家码，如 +91
	MaxRetryCount int     `mapstructure:"max_retry_count"` // outbox/短信消息最大重试次数
}

var GlobalConfig *Config

// LoadConfig 加载配置文件，密钥类配置从环境变量补齐
func LoadConfig(configPath string) *Config {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("读取配置文件失败: %v", err)
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		log.Fatalf("解析配置文件失败: %v", err)
	}

	// 密钥一律走环境变量，请求里不接受任何密钥
	viper.AutomaticEnv()
	config.Razorpay.KeyID = viper.GetString("RAZORPAY_KEY_ID")
	config.Razorpay.KeySecret = viper.GetString("RAZORPAY_KEY_SECRET")
	config.Twilio.AccountSID = viper.GetString("TWILIO_SID")
	config.Twilio.AuthToken = viper.GetString("TWILIO_AUTH_TOKEN")
	config.Twilio.FromNumber = viper.GetString("TWILIO_NUMBER")
	config.Admin.Key = viper.GetString("ADMIN_KEY")

	if config.Server.PublicBaseURL == "" {
		config.Server.PublicBaseURL = "http://localhost:5173"
	}
	if config.Business.Currency == "" {
		config.Business.Currency = "INR"
	}
	if config.Business.CountryCode == "" {
		config.Business.CountryCode = "+91"
	}

	GlobalConfig = config
	return config
}
