package config

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Funding    FundingConfig    `mapstructure:"funding"`
	Ledger     LedgerConfig     `mapstructure:"ledger"`
	Task       TaskConfig       `mapstructure:"task"`
	Dispatcher DispatcherConfig `mapstructure:"dispatcher"`
	Log        LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"` // 关闭时不记录事件流水
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN postgres 连接串
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		d.Host, d.User, d.Password, d.DBName, d.Port, d.SSLMode)
}

// FundingConfig 众筹池配置
type FundingConfig struct {
	Address      string        `mapstructure:"address"`       // 众筹池账户地址
	RewardToken  string        `mapstructure:"reward_token"`  // 奖励代币地址
	Beneficiary  string        `mapstructure:"beneficiary"`   // 受益人，可为空
	RewardSupply string        `mapstructure:"reward_supply"` // 奖励总量（最小单位，十进制）
	Unit         time.Duration `mapstructure:"unit"`          // 募资时长单位
	Admins       []string      `mapstructure:"admins"`        // 管理员地址

	// 启动时自动初始化，goal 为空则跳过
	Goal     string `mapstructure:"goal"`
	Duration int64  `mapstructure:"duration"`
}

// LedgerConfig 原生货币账本的初始余额
type LedgerConfig struct {
	Genesis map[string]string `mapstructure:"genesis"` // 地址 -> 余额
}

type TaskConfig struct {
	Interval     int  `mapstructure:"interval"`      // 秒
	AutoWithdraw bool `mapstructure:"auto_withdraw"` // 成功后自动转给受益人
}

type DispatcherConfig struct {
	Workers int `mapstructure:"workers"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // 日志级别: debug, info, warn, error, fatal
	Output string `mapstructure:"output"` // 输出目标: stdout, stderr, file
	File   string `mapstructure:"file"`   // 日志文件路径（当output为file时使用）
}

// GetLevel 实现 logger.LogConfig 接口
func (l LogConfig) GetLevel() string {
	return l.Level
}

// GetOutput 实现 logger.LogConfig 接口
func (l LogConfig) GetOutput() string {
	return l.Output
}

// GetFile 实现 logger.LogConfig 接口
func (l LogConfig) GetFile() string {
	return l.File
}

// Load 读取配置。path 为空时按默认目录搜索 config.yaml，找不到文件时使用默认值和环境变量
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/smartfunding")
	}

	setDefaults(v)

	v.SetEnvPrefix("SMARTFUNDING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "smartfunding")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("funding.address", "0x0000000000000000000000000000000000005f01")
	v.SetDefault("funding.reward_token", "0x0000000000000000000000000000000000005f02")
	v.SetDefault("funding.beneficiary", "")
	v.SetDefault("funding.reward_supply", "1000000000000000000000000")
	v.SetDefault("funding.unit", "24h")
	v.SetDefault("funding.admins", []string{})
	v.SetDefault("funding.goal", "")
	v.SetDefault("funding.duration", 0)
	v.SetDefault("task.interval", 60)
	v.SetDefault("task.auto_withdraw", false)
	v.SetDefault("dispatcher.workers", 4)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.file", "logs/app.log")
}

// Validate 校验地址和金额格式
func (c *Config) Validate() error {
	f := c.Funding
	if !common.IsHexAddress(f.Address) {
		return fmt.Errorf("invalid funding.address: %q", f.Address)
	}
	if !common.IsHexAddress(f.RewardToken) {
		return fmt.Errorf("invalid funding.reward_token: %q", f.RewardToken)
	}
	if f.Beneficiary != "" && !common.IsHexAddress(f.Beneficiary) {
		return fmt.Errorf("invalid funding.beneficiary: %q", f.Beneficiary)
	}
	if _, err := ParseAmount(f.RewardSupply); err != nil {
		return fmt.Errorf("invalid funding.reward_supply: %w", err)
	}
	if f.Goal != "" {
		if _, err := ParseAmount(f.Goal); err != nil {
			return fmt.Errorf("invalid funding.goal: %w", err)
		}
		if f.Duration <= 0 {
			return fmt.Errorf("funding.duration must be positive when funding.goal is set")
		}
	}
	for addr, balance := range c.Ledger.Genesis {
		if !common.IsHexAddress(addr) {
			return fmt.Errorf("invalid ledger.genesis address: %q", addr)
		}
		if _, err := ParseAmount(balance); err != nil {
			return fmt.Errorf("invalid ledger.genesis balance for %s: %w", addr, err)
		}
	}
	if c.Task.Interval <= 0 {
		return fmt.Errorf("task.interval must be positive")
	}
	return nil
}

// ParseAmount 解析十进制的正整数金额
func ParseAmount(s string) (*big.Int, error) {
	amount, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok {
		return nil, fmt.Errorf("not a decimal integer: %q", s)
	}
	if amount.Sign() <= 0 {
		return nil, fmt.Errorf("amount must be positive: %q", s)
	}
	return amount, nil
}
