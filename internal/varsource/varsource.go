// Package varsource 汇总模板展开使用的变量。
//
// 来源按优先级从低到高：.env 文件 → YAML/JSON 变量文件 → key=value 参数。
package varsource

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"strings"

	"github.com/joho/godotenv"
	yamlv3 "go.yaml.in/yaml/v3"

	"github.com/lwmacct/251019-go-pkg-tokparse/pkg/cfgm"
)

// ErrInvalidPair 表示参数不是 key=value 格式。
var ErrInvalidPair = errors.New("varsource: expected key=value")

// Sources 变量来源。
type Sources struct {
	EnvFiles  []string // .env 文件
	VarsFiles []string // YAML/JSON 文件，根节点必须为对象
	Pairs     []string // key=value
}

// Load 按优先级合并所有来源，后者覆盖前者。
func Load(src Sources) (map[string]string, error) {
	vars := make(map[string]string)

	if len(src.EnvFiles) > 0 {
		envVars, err := godotenv.Read(src.EnvFiles...)
		if err != nil {
			return nil, fmt.Errorf("varsource: read env files: %w", err)
		}
		maps.Copy(vars, envVars)
	}

	for _, path := range src.VarsFiles {
		fileVars, err := ReadVarsFile(path)
		if err != nil {
			return nil, err
		}
		maps.Copy(vars, fileVars)
	}

	pairVars, err := ParsePairs(src.Pairs)
	if err != nil {
		return nil, err
	}
	maps.Copy(vars, pairVars)

	return vars, nil
}

// ParsePairs 将 "key=value" 列表转为 map。
func ParsePairs(pairs []string) (map[string]string, error) {
	result := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPair, pair)
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("%w: empty key in %q", ErrInvalidPair, pair)
		}
		result[key] = value
	}

	return result, nil
}

// ReadVarsFile 读取 YAML/JSON 变量文件。
//
// 嵌套对象以 "." 拼接为 key，例如 db: {host: x} → db.host=x；
// 展平规则见 [cfgm.Flatten]，列表不支持。
func ReadVarsFile(path string) (map[string]string, error) {
	content, err := os.ReadFile(path) //nolint:gosec // path is provided by the user
	if err != nil {
		return nil, fmt.Errorf("varsource: %w", err)
	}

	var raw map[string]any
	if err := yamlv3.Unmarshal(content, &raw); err != nil {
		return nil, fmt.Errorf("varsource: parse %s: %w", path, err)
	}

	vars, err := cfgm.Flatten(raw)
	if err != nil {
		return nil, fmt.Errorf("varsource: %s: %w", path, err)
	}

	return vars, nil
}
