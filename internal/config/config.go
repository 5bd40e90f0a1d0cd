// Package config 提供应用配置管理。
//
// 配置加载优先级 (从低到高)：
//  1. 默认值 - DefaultConfig() 函数中定义
//  2. 配置文件 - 通过 WithAppName / WithConfigPaths 选项设置
//  3. 环境变量 - 通过 WithEnvPrefix 选项启用
//  4. CLI flags - 通过 WithCommand 选项设置
package config

import (
	"time"
)

// AppName 应用名称，用于配置文件搜索路径。
const AppName = "tokparse"

// EnvPrefix 环境变量前缀。
const EnvPrefix = "TOKPARSE_"

// Config 应用配置。
type Config struct {
	Parser ParserConfig `json:"parser" desc:"占位符展开配置"`
	Server ServerConfig `json:"server" desc:"服务端配置"`
	Client ClientConfig `json:"client" desc:"客户端配置"`
}

// ParserConfig 占位符展开配置。
//
//nolint:tagliatelle
type ParserConfig struct {
	Open     string   `json:"open" desc:"开始定界符"`
	Close    string   `json:"close" desc:"结束定界符"`
	Strict   bool     `json:"strict" desc:"未设置的变量视为错误"`
	UseEnv   bool     `json:"use-env" desc:"读取进程环境变量"`
	EnvFiles []string `json:"env-files" desc:"变量来源 .env 文件"`
}

// ServerConfig 服务端配置。
//
//nolint:tagliatelle
type ServerConfig struct {
	Addr     string        `json:"addr" desc:"服务器监听地址"`
	Timeout  time.Duration `json:"timeout" desc:"HTTP 读写超时"`
	Idletime time.Duration `json:"idletime" desc:"HTTP 空闲超时"`
	MaxBody  int64         `json:"max-body" desc:"请求体最大字节数"`
}

// ClientConfig 客户端配置。
type ClientConfig struct {
	URL     string        `json:"url" desc:"服务器地址"`
	Timeout time.Duration `json:"timeout" desc:"请求超时时间"`
	Retries int           `json:"retries" desc:"重试次数"`
}

// DefaultConfig 返回默认配置。
// 注意：internal/command/command.go 中的 Defaults 变量引用此函数以实现单一配置来源。
func DefaultConfig() Config {
	return Config{
		Parser: ParserConfig{
			Open:   "${",
			Close:  "}",
			UseEnv: true,
		},
		Server: ServerConfig{
			Addr:     `${TOKPARSE_ADDR:-:40117}`,
			Timeout:  15 * time.Second,
			Idletime: 60 * time.Second,
			MaxBody:  1 << 20,
		},
		Client: ClientConfig{
			URL:     `${TOKPARSE_URL:-http://localhost:40117}`,
			Timeout: 30 * time.Second,
			Retries: 3,
		},
	}
}
