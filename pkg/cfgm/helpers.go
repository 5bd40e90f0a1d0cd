package cfgm

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"path/filepath"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	yamlv3 "go.yaml.in/yaml/v3"
)

// ErrUnsupportedValue 表示展平时遇到无法转为字符串的值（如列表）。
var ErrUnsupportedValue = errors.New("cfgm: unsupported value")

var (
	durationType = reflect.TypeFor[time.Duration]()
	timeType     = reflect.TypeFor[time.Time]()
)

func configTagName(field reflect.StructField) string {
	return parseTagName(field.Tag.Get("json"))
}

func parseTagName(tag string) string {
	name, _, _ := strings.Cut(tag, ",")
	if name == "-" {
		return ""
	}

	return name
}

// isStructType 判断是否为需要展开为子 map 的结构体（time.Time 视为标量）。
func isStructType(typ reflect.Type) bool {
	if typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}

	return typ.Kind() == reflect.Struct && typ != durationType && typ != timeType
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}

	return prefix + "." + key
}

// walkConfigFields 遍历配置结构体的叶子字段，key 为 json tag 以 "." 拼接的完整路径。
//
// 默认值 key 收集、环境变量绑定与 CLI flag 映射共用此遍历。
func walkConfigFields(typ reflect.Type, prefix string, visit func(key string, field reflect.StructField)) {
	if typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return
	}

	for i := range typ.NumField() {
		field := typ.Field(i)
		key := configTagName(field)
		if field.PkgPath != "" || key == "" {
			continue
		}

		if isStructType(field.Type) {
			walkConfigFields(field.Type, joinKey(prefix, key), visit)
			continue
		}
		visit(joinKey(prefix, key), field)
	}
}

// collectConfigKeys 返回配置结构体的全部叶子 key，如 parser.env-files。
func collectConfigKeys[T any](defaultConfig T) []string {
	var keys []string
	walkConfigFields(reflect.TypeOf(defaultConfig), "", func(key string, _ reflect.StructField) {
		keys = append(keys, key)
	})

	return keys
}

// structToMap 将配置结构体转为以 json tag 为 key 的 map。
func structToMap(cfg any) map[string]any {
	if out, ok := toMapValue(reflect.ValueOf(cfg)).(map[string]any); ok {
		return out
	}

	return map[string]any{}
}

func toMapValue(val reflect.Value) any {
	for val.Kind() == reflect.Pointer || val.Kind() == reflect.Interface {
		if val.IsNil() {
			return nil
		}
		val = val.Elem()
	}
	if !val.IsValid() {
		return nil
	}

	switch {
	case isStructType(val.Type()):
		out := make(map[string]any)
		for i := range val.NumField() {
			field := val.Type().Field(i)
			if key := configTagName(field); field.PkgPath == "" && key != "" {
				out[key] = toMapValue(val.Field(i))
			}
		}

		return out
	case val.Kind() == reflect.Slice:
		if val.IsNil() {
			return nil
		}
		out := make([]any, val.Len())
		for i := range out {
			out[i] = toMapValue(val.Index(i))
		}

		return out
	case val.Kind() == reflect.Map:
		if val.IsNil() {
			return nil
		}
		out := make(map[string]any, val.Len())
		for iter := val.MapRange(); iter.Next(); {
			out[fmt.Sprint(iter.Key().Interface())] = toMapValue(iter.Value())
		}

		return out
	}

	return val.Interface()
}

// parseConfigBytes 按扩展名解析 JSON 或 YAML，根节点必须为对象。
func parseConfigBytes(path string, content []byte) (map[string]any, error) {
	var raw any
	var err error
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(content, &raw)
	} else {
		err = yamlv3.Unmarshal(content, &raw)
	}
	if err != nil {
		return nil, err
	}

	switch root := normalizeMapKeys(raw).(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return root, nil
	}

	return nil, errors.New("config root must be object")
}

// normalizeMapKeys 将 YAML 中的非字符串 key 转为字符串。
func normalizeMapKeys(val any) any {
	switch typed := val.(type) {
	case map[string]any:
		for key, value := range typed {
			typed[key] = normalizeMapKeys(value)
		}

		return typed
	case map[any]any:
		out := make(map[string]any, len(typed))
		for key, value := range typed {
			out[fmt.Sprint(key)] = normalizeMapKeys(value)
		}

		return out
	case []any:
		for i := range typed {
			typed[i] = normalizeMapKeys(typed[i])
		}

		return typed
	}

	return val
}

func mergeMaps(dst, src map[string]any) {
	for key, value := range src {
		srcMap, srcOK := value.(map[string]any)
		dstMap, dstOK := dst[key].(map[string]any)
		if srcOK && dstOK {
			mergeMaps(dstMap, srcMap)
			continue
		}
		dst[key] = value
	}
}

// setByPath 按 "a.b.c" 写入嵌套 map，缺失的中间层自动创建。
func setByPath(dst map[string]any, path string, value any) {
	head, rest, nested := strings.Cut(path, ".")
	if !nested {
		dst[head] = value
		return
	}

	child, ok := dst[head].(map[string]any)
	if !ok {
		child = make(map[string]any)
		dst[head] = child
	}
	setByPath(child, rest, value)
}

func decodeConfigMap(data map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.TextUnmarshallerHookFunc(),
		),
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "json",
	})
	if err != nil {
		return err
	}

	return decoder.Decode(data)
}

// leaf 为嵌套 map 中的一个叶子节点。
type leaf struct {
	key    string // 完整路径，如 server.addr
	value  any
	parent map[string]any
	name   string
}

func (l leaf) set(value any) {
	l.parent[l.name] = value
}

// walkLeaves 按 key 排序深度优先遍历叶子节点；空 map 视为叶子。
func walkLeaves(data map[string]any, prefix string, visit func(leaf) error) error {
	for _, name := range slices.Sorted(maps.Keys(data)) {
		value := data[name]
		key := joinKey(prefix, name)
		if child, ok := value.(map[string]any); ok && len(child) > 0 {
			if err := walkLeaves(child, key, visit); err != nil {
				return err
			}
			continue
		}
		if err := visit(leaf{key: key, value: value, parent: data, name: name}); err != nil {
			return err
		}
	}

	return nil
}

// unknownKeys 返回 data 中不属于 known 的叶子 key（已排序）。
func unknownKeys(data map[string]any, known []string) []string {
	var unknown []string
	_ = walkLeaves(data, "", func(l leaf) error {
		if !slices.Contains(known, l.key) {
			unknown = append(unknown, l.key)
		}

		return nil
	})

	return unknown
}

// Flatten 将嵌套 map 展平为 "a.b" → 字符串。
//
// 标量按 YAML 写法格式化，null 为空字符串，空 map 被忽略；
// 列表返回 [ErrUnsupportedValue]。
func Flatten(data map[string]any) (map[string]string, error) {
	out := make(map[string]string)
	err := walkLeaves(data, "", func(l leaf) error {
		if _, ok := l.value.(map[string]any); ok {
			return nil
		}
		s, err := formatScalar(l.value)
		if err != nil {
			return fmt.Errorf("%s: %w", l.key, err)
		}
		out[l.key] = s

		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func formatScalar(value any) (string, error) {
	switch typed := value.(type) {
	case nil:
		return "", nil
	case string:
		return typed, nil
	case bool:
		return strconv.FormatBool(typed), nil
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64), nil
	case time.Time:
		if typed.Equal(typed.Truncate(24*time.Hour)) && typed.Location() == time.UTC {
			return typed.Format(time.DateOnly), nil
		}

		return typed.Format(time.RFC3339Nano), nil
	case []any, map[any]any:
		return "", fmt.Errorf("%w: %T", ErrUnsupportedValue, value)
	}

	// int / int64 / uint64 及其他标量
	return fmt.Sprint(value), nil
}
