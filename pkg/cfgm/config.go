package cfgm

import (
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/lwmacct/251019-go-pkg-tokparse/pkg/templexp"
)

// DefaultPaths 返回默认配置文件搜索路径，先命中者生效。
//
// appName 非空时依次为 ./.<app>.yaml、~/.<app>.yaml、/etc/<app>/config.yaml，
// 之后总是 config.yaml 与 config/config.yaml。
func DefaultPaths(appName ...string) []string {
	var paths []string
	if len(appName) > 0 && appName[0] != "" {
		name := appName[0]
		paths = append(paths, "."+name+".yaml")
		if home, err := os.UserHomeDir(); err == nil {
			paths = append(paths, filepath.Join(home, "."+name+".yaml"))
		}
		paths = append(paths, filepath.Join("/etc", name, "config.yaml"))
	}

	return append(paths, "config.yaml", "config/config.yaml")
}

// Load 以 defaultConfig 为底，依次合并配置文件、环境变量与 CLI flags。
func Load[T any](defaultConfig T, opts ...Option) (*T, error) {
	return load(defaultConfig, 1, opts...)
}

// load 是内部加载实现，callerSkip 用于控制 FindProjectRoot 的跳过层数。
func load[T any](defaultConfig T, callerSkip int, opts ...Option) (*T, error) {
	o := newOptions(opts)
	if o.callerSkip > 0 {
		callerSkip = o.callerSkip
	}
	if !o.baseDirSet {
		if root, err := FindProjectRoot(callerSkip + 1); err == nil {
			o.baseDir = root
		}
	}

	l := &loader{
		opts: o,
		typ:  reflect.TypeOf(defaultConfig),
		data: structToMap(defaultConfig),
		keys: collectConfigKeys(defaultConfig),
	}
	steps := []func() error{
		l.expandDefaults, // 1️⃣ 默认值
		l.mergeFile,      // 2️⃣ 配置文件
		l.applyEnv,       // 3️⃣ 环境变量
		l.applyFlags,     // 4️⃣ CLI flags
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}

	var cfg T
	if err := decodeConfigMap(l.data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// loader 保存一次加载过程中逐层合并的配置 map。
type loader struct {
	opts     *options
	typ      reflect.Type
	data     map[string]any
	keys     []string
	expander *templexp.Expander // nil 表示禁用模板展开
}

// expandDefaults 准备模板变量（进程环境 + env 文件），并展开默认值中的字符串。
func (l *loader) expandDefaults() error {
	if l.opts.noTemplateExpansion {
		return nil
	}

	vars, err := readEnvFiles(l.opts.resolvePaths(l.opts.envFiles))
	if err != nil {
		return err
	}
	if l.expander, err = templexp.New(templexp.WithVars(vars)); err != nil {
		return err
	}
	if err := expandMapStrings(l.data, l.expander); err != nil {
		return fmt.Errorf("expand template in defaults: %w", err)
	}

	return nil
}

// mergeFile 合并搜索路径中第一个可读的配置文件。
func (l *loader) mergeFile() error {
	for _, path := range l.opts.resolvePaths(l.opts.searchPaths()) {
		content, err := os.ReadFile(path) //nolint:gosec // path is from trusted config
		if err != nil {
			continue
		}

		if l.expander != nil {
			expanded, err := l.expander.Expand(string(content))
			if err != nil {
				return fmt.Errorf("expand template in %s: %w", path, err)
			}
			content = []byte(expanded)
		}

		fileMap, err := parseConfigBytes(path, content)
		if err != nil {
			return fmt.Errorf("parse config file %s: %w", path, err)
		}
		if unknown := unknownKeys(fileMap, l.keys); len(unknown) > 0 {
			slog.Warn("Unknown config keys", "path", path, "keys", unknown)
		}
		mergeMaps(l.data, fileMap)
		slog.Debug("Loaded config from file", "path", path, "templateExpansion", l.expander != nil)

		return nil
	}

	slog.Debug("No config file found, using defaults")

	return nil
}

// applyEnv 读取 前缀 + 大写 key 形式的环境变量，如 APP_PARSER_ENV_FILES。
func (l *loader) applyEnv() error {
	if l.opts.envPrefix == "" {
		return nil
	}

	for envKey, key := range generateEnvBindings(l.opts.envPrefix, l.keys) {
		if val := os.Getenv(envKey); val != "" {
			setByPath(l.data, key, val)
			slog.Debug("Loaded env binding", "env", envKey, "path", key)
		}
	}

	return nil
}

// applyFlags 写入用户显式设置的 CLI flags。
func (l *loader) applyFlags() error {
	if l.opts.cmd != nil {
		applyCommandFlags(l.opts.cmd, l.data, l.typ)
	}

	return nil
}

// LoadCmd 等价于 Load(defaultConfig, WithCommand(cmd), WithAppName(appName), opts...)，
// appName 为空时省略 WithAppName。
//
//	cfg, err := cfgm.LoadCmd(cmd, config.DefaultConfig(), "tokparse",
//	    cfgm.WithEnvPrefix("TOKPARSE_"),
//	)
func LoadCmd[T any](cmd *cli.Command, defaultConfig T, appName string, opts ...Option) (*T, error) {
	return load(defaultConfig, 1, cmdOptions(cmd, appName, opts)...)
}

// MustLoad 同 [Load]，失败时 panic。
func MustLoad[T any](defaultConfig T, opts ...Option) *T {
	return must(load(defaultConfig, 1, opts...))
}

// MustLoadCmd 同 [LoadCmd]，失败时 panic。
func MustLoadCmd[T any](cmd *cli.Command, defaultConfig T, appName string, opts ...Option) *T {
	return must(load(defaultConfig, 1, cmdOptions(cmd, appName, opts)...))
}

func cmdOptions(cmd *cli.Command, appName string, opts []Option) []Option {
	base := []Option{WithCommand(cmd)}
	if appName != "" {
		base = append(base, WithAppName(appName))
	}

	return append(base, opts...)
}

func must[T any](cfg *T, err error) *T {
	if err != nil {
		panic(fmt.Sprintf("cfgm: failed to load config: %v", err))
	}

	return cfg
}

// readEnvFiles 读取存在的 .env 文件，后面的文件覆盖前面的同名变量。
//
// 变量只用于模板展开，不写入进程环境。
func readEnvFiles(paths []string) (map[string]string, error) {
	vars := make(map[string]string)
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			slog.Debug("Env file not found, skipped", "path", path)
			continue
		}
		fileVars, err := godotenv.Read(path)
		if err != nil {
			return nil, fmt.Errorf("read env file %s: %w", path, err)
		}
		maps.Copy(vars, fileVars)
		slog.Debug("Loaded env file", "path", path, "count", len(fileVars))
	}

	return vars, nil
}

// expandMapStrings 对 map 中所有字符串叶子执行模板展开。
func expandMapStrings(data map[string]any, expander *templexp.Expander) error {
	return walkLeaves(data, "", func(l leaf) error {
		text, ok := l.value.(string)
		if !ok {
			return nil
		}
		expanded, err := expander.Expand(text)
		if err != nil {
			return fmt.Errorf("%s: %w", l.key, err)
		}
		l.set(expanded)

		return nil
	})
}

// generateEnvBindings 根据配置 key 生成 环境变量名 → key 映射。
//
// "." 与 "-" 转为 "_" 并大写，例如前缀 "APP_" 时
// parser.use-env → APP_PARSER_USE_ENV。
func generateEnvBindings(prefix string, keys []string) map[string]string {
	replacer := strings.NewReplacer(".", "_", "-", "_")
	bindings := make(map[string]string, len(keys))
	for _, key := range keys {
		bindings[prefix+strings.ToUpper(replacer.Replace(key))] = key
	}

	return bindings
}
