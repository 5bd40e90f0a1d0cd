package cfgm

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lwmacct/251019-go-pkg-tokparse/pkg/templexp"
)

func TestUnknownKeys(t *testing.T) {
	fileMap := map[string]any{
		"name": "x",
		"server": map[string]any{
			"addr":  ":1",
			"adrr":  ":2",
			"extra": map[string]any{},
		},
		"typo": true,
	}

	got := unknownKeys(fileMap, []string{"name", "server.addr", "server.port"})
	assert.Equal(t, []string{"server.adrr", "server.extra", "typo"}, got)
}

func TestExpandMapStrings(t *testing.T) {
	expander, err := templexp.New(templexp.WithoutEnv(), templexp.WithVars(map[string]string{"HOST": "h"}))
	require.NoError(t, err)

	data := map[string]any{
		"url":   "http://${HOST}",
		"count": 3,
		"nested": map[string]any{
			"open": "${",
			"addr": "${HOST}:${PORT:-80}",
		},
	}
	require.NoError(t, expandMapStrings(data, expander))
	assert.Equal(t, "http://h", data["url"])
	assert.Equal(t, 3, data["count"])
	assert.Equal(t, map[string]any{"open": "${", "addr": "h:80"}, data["nested"])

	err = expandMapStrings(map[string]any{"a": map[string]any{"b": "${X:?}"}}, expander)
	require.ErrorIs(t, err, templexp.ErrParameterNotSet)
	assert.Contains(t, err.Error(), "a.b: ")
}

func TestParseTagName(t *testing.T) {
	assert.Empty(t, parseTagName(""))
	assert.Empty(t, parseTagName("-"))
	assert.Empty(t, parseTagName(",omitempty"))
	assert.Equal(t, "max-len", parseTagName("max-len,omitempty"))
}

func TestFlatten(t *testing.T) {
	got, err := Flatten(map[string]any{
		"db": map[string]any{
			"host": "localhost",
			"port": 5432,
			"tls":  map[string]any{"on": true},
		},
		"big":   uint64(1 << 63),
		"wide":  int64(-1 << 62),
		"ratio": 0.25,
		"day":   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		"at":    time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC),
		"null":  nil,
		"empty": map[string]any{},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"db.host":   "localhost",
		"db.port":   "5432",
		"db.tls.on": "true",
		"big":       "9223372036854775808",
		"wide":      "-4611686018427387904",
		"ratio":     "0.25",
		"day":       "2024-01-01",
		"at":        "2024-01-01T10:30:00Z",
		"null":      "",
	}, got)

	_, err = Flatten(map[string]any{"a": map[string]any{"list": []any{"x"}}})
	require.ErrorIs(t, err, ErrUnsupportedValue)
	assert.Contains(t, err.Error(), "a.list")
}

func TestWalkLeaves_SortedOrder(t *testing.T) {
	var keys []string
	err := walkLeaves(map[string]any{
		"b": 1,
		"a": map[string]any{"z": 1, "y": map[string]any{}},
		"c": map[string]any{"x": nil},
	}, "", func(l leaf) error {
		keys = append(keys, l.key)

		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.y", "a.z", "b", "c.x"}, keys)
}

type fieldsConfig struct {
	Parser struct {
		Open   string `json:"open"`
		UseEnv bool   `json:"use-env"`
	} `json:"parser"`
	Timeout time.Duration `json:"timeout"`
	Started time.Time     `json:"started"`
	Skipped string        `json:"-"`
	hidden  string
}

func TestCollectConfigKeys(t *testing.T) {
	assert.Equal(t, []string{"parser.open", "parser.use-env", "timeout", "started"}, collectConfigKeys(fieldsConfig{}))
	assert.Equal(t, []string{"parser.open", "parser.use-env", "timeout", "started"}, collectConfigKeys(&fieldsConfig{}))
}

func TestStructToMap(t *testing.T) {
	var cfg fieldsConfig
	cfg.Parser.Open = "${"
	cfg.Timeout = time.Second
	cfg.hidden = "x"

	got := structToMap(cfg)
	assert.Equal(t, map[string]any{"open": "${", "use-env": false}, got["parser"])
	assert.Equal(t, time.Second, got["timeout"])
	assert.IsType(t, time.Time{}, got["started"])
	assert.NotContains(t, got, "-")
	assert.Len(t, got, 3)

	assert.Empty(t, structToMap((*fieldsConfig)(nil)))
}

func TestSetByPathAndMerge(t *testing.T) {
	data := map[string]any{"parser": map[string]any{"open": "${", "close": "}"}}
	setByPath(data, "parser.open", "{{")
	setByPath(data, "server.addr", ":1")
	mergeMaps(data, map[string]any{"parser": map[string]any{"close": "}}"}, "server": "flat"})

	assert.Equal(t, map[string]any{
		"parser": map[string]any{"open": "{{", "close": "}}"},
		"server": "flat",
	}, data)
}

func TestGenerateEnvBindings(t *testing.T) {
	assert.Equal(t, map[string]string{
		"APP_PARSER_USE_ENV": "parser.use-env",
		"APP_TIMEOUT":        "timeout",
	}, generateEnvBindings("APP_", []string{"parser.use-env", "timeout"}))
}

func TestFlagGetterFor(t *testing.T) {
	typ := reflect.TypeFor[fieldsConfig]()
	var names []string
	walkConfigFields(typ, "", func(key string, field reflect.StructField) {
		if flagGetterFor(field.Type) != nil {
			names = append(names, flagName(key))
		}
	})
	assert.Equal(t, []string{"parser-open", "parser-use-env", "timeout", "started"}, names)

	assert.Nil(t, flagGetterFor(reflect.TypeFor[map[string]int]()))
	assert.Nil(t, flagGetterFor(reflect.TypeFor[[]bool]()))
	assert.NotNil(t, flagGetterFor(reflect.TypeFor[[]time.Time]()))
	assert.NotNil(t, flagGetterFor(reflect.TypeFor[map[string]string]()))
}
