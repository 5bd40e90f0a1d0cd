package cfgm

import (
	"reflect"
	"strings"

	"github.com/urfave/cli/v3"
)

// flagGetter 从命令中读取 flag 值。
type flagGetter func(cmd *cli.Command, name string) any

func getter[V any](get func(*cli.Command, string) V) flagGetter {
	return func(cmd *cli.Command, name string) any {
		return get(cmd, name)
	}
}

var (
	typeGetters = map[reflect.Type]flagGetter{
		durationType: getter((*cli.Command).Duration),
		timeType:     getter((*cli.Command).Timestamp),
	}

	scalarGetters = map[reflect.Kind]flagGetter{
		reflect.String:  getter((*cli.Command).String),
		reflect.Bool:    getter((*cli.Command).Bool),
		reflect.Int:     getter((*cli.Command).Int),
		reflect.Int8:    getter((*cli.Command).Int8),
		reflect.Int16:   getter((*cli.Command).Int16),
		reflect.Int32:   getter((*cli.Command).Int32),
		reflect.Int64:   getter((*cli.Command).Int64),
		reflect.Uint:    getter((*cli.Command).Uint),
		reflect.Uint16:  getter((*cli.Command).Uint16),
		reflect.Uint32:  getter((*cli.Command).Uint32),
		reflect.Uint64:  getter((*cli.Command).Uint64),
		reflect.Float32: getter((*cli.Command).Float32),
		reflect.Float64: getter((*cli.Command).Float64),
		reflect.Uint8: func(cmd *cli.Command, name string) any {
			return uint8(cmd.Uint(name)) //nolint:gosec // CLI value expected to be in uint8 range
		},
	}

	sliceGetters = map[reflect.Kind]flagGetter{
		reflect.String:  getter((*cli.Command).StringSlice),
		reflect.Int:     getter((*cli.Command).IntSlice),
		reflect.Int8:    getter((*cli.Command).Int8Slice),
		reflect.Int16:   getter((*cli.Command).Int16Slice),
		reflect.Int32:   getter((*cli.Command).Int32Slice),
		reflect.Int64:   getter((*cli.Command).Int64Slice),
		reflect.Uint16:  getter((*cli.Command).Uint16Slice),
		reflect.Uint32:  getter((*cli.Command).Uint32Slice),
		reflect.Float32: getter((*cli.Command).Float32Slice),
		reflect.Float64: getter((*cli.Command).Float64Slice),
	}
)

// flagGetterFor 返回字段类型对应的读取函数，不支持的类型返回 nil。
func flagGetterFor(typ reflect.Type) flagGetter {
	if get, ok := typeGetters[typ]; ok {
		return get
	}

	switch typ.Kind() {
	case reflect.Slice:
		if typ.Elem() == timeType {
			return getter((*cli.Command).TimestampArgs)
		}

		return sliceGetters[typ.Elem().Kind()]
	case reflect.Map:
		if typ.Key().Kind() == reflect.String && typ.Elem().Kind() == reflect.String {
			return getter((*cli.Command).StringMap)
		}

		return nil
	}

	return scalarGetters[typ.Kind()]
}

// flagName 将配置 key 映射为 flag 名称，仅替换 "."，例如 parser.use-env → parser-use-env。
func flagName(key string) string {
	return strings.ReplaceAll(key, ".", "-")
}

// applyCommandFlags 将用户显式设置的 flags 写入配置 map，未设置的 flag 不覆盖下层配置。
func applyCommandFlags(cmd *cli.Command, data map[string]any, typ reflect.Type) {
	walkConfigFields(typ, "", func(key string, field reflect.StructField) {
		name := flagName(key)
		if !cmd.IsSet(name) {
			return
		}
		if get := flagGetterFor(field.Type); get != nil {
			setByPath(data, key, get(cmd, name))
		}
	})
}
