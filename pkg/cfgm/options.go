package cfgm

import (
	"path/filepath"

	"github.com/urfave/cli/v3"
)

type options struct {
	appName             string
	cmd                 *cli.Command
	configPaths         []string
	baseDir             string
	baseDirSet          bool // 区分 WithBaseDir("") 与未设置
	envPrefix           string
	envFiles            []string
	noTemplateExpansion bool
	callerSkip          int // 0 表示由入口函数决定
}

// Option 配置加载选项。
type Option func(*options)

func newOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	return o
}

// searchPaths 返回配置文件搜索路径，未指定时使用 [DefaultPaths]。
func (o *options) searchPaths() []string {
	if len(o.configPaths) > 0 {
		return o.configPaths
	}

	return DefaultPaths(o.appName)
}

// resolvePaths 将相对路径基于 baseDir 转换为绝对路径。
func (o *options) resolvePaths(paths []string) []string {
	if o.baseDir == "" {
		return paths
	}

	out := make([]string, len(paths))
	for i, p := range paths {
		if !filepath.IsAbs(p) {
			p = filepath.Join(o.baseDir, p)
		}
		out[i] = p
	}

	return out
}

// WithCommand 读取 cmd 中显式设置的 flags，flag 名为配置 key 中 "." 换成 "-"。
func WithCommand(cmd *cli.Command) Option {
	return func(o *options) {
		o.cmd = cmd
	}
}

// WithAppName 使用 DefaultPaths(name) 作为搜索路径（未调用 [WithConfigPaths] 时）。
func WithAppName(name string) Option {
	return func(o *options) {
		o.appName = name
	}
}

// WithConfigPaths 替换配置文件搜索路径，命中第一个存在的文件即停止。
func WithConfigPaths(paths ...string) Option {
	return func(o *options) {
		o.configPaths = paths
	}
}

// WithBaseDir 设置相对路径的基准目录，空字符串表示当前工作目录。
//
// 未设置时使用 [FindProjectRoot] 的结果。
func WithBaseDir(path string) Option {
	return func(o *options) {
		o.baseDir = path
		o.baseDirSet = true
	}
}

// WithCallerSkip 修正被多层封装时 [FindProjectRoot] 的调用栈位置。
//
//	func loadAppConfig() (*Config, error) {
//	    return cfgm.Load(DefaultConfig(), cfgm.WithCallerSkip(2))
//	}
//
// 默认 1，即入口函数的直接调用方。设置了 [WithBaseDir] 时无效。
func WithCallerSkip(skip int) Option {
	return func(o *options) {
		o.callerSkip = skip
	}
}

// WithEnvPrefix 按 前缀 + 大写 key 读取环境变量，"." 与 "-" 转为 "_"。
//
// 前缀 "TOKPARSE_" 时 server.max-body 对应 TOKPARSE_SERVER_MAX_BODY。
// 只绑定结构体中定义的 key，空值被忽略。
func WithEnvPrefix(prefix string) Option {
	return func(o *options) {
		o.envPrefix = prefix
	}
}

// WithoutTemplateExpansion 保留默认值与配置文件中的 ${...} 原文。
func WithoutTemplateExpansion() Option {
	return func(o *options) {
		o.noTemplateExpansion = true
	}
}

// WithEnvFiles 添加模板变量来源的 .env 文件。
//
// 后面的文件覆盖前面的，均覆盖进程环境变量；不存在的文件被跳过。
func WithEnvFiles(paths ...string) Option {
	return func(o *options) {
		o.envFiles = paths
	}
}
