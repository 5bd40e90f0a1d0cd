// Package sqlparam 将 SQL 中的 #{...} 参数占位符编译为驱动占位符。
//
// 每个 #{name} 被替换为 "?" 或 "$n"，同时按出现顺序记录参数描述，
// 之后可通过 [Statement.Bind] 按名称取值生成有序参数列表。
//
// 表达式语法：
//   - #{name}
//   - #{name:VARCHAR} - 等价于 #{name, jdbcType=VARCHAR}
//   - #{name, key=value, ...}
//   - #{user.name} - 绑定时按 "." 逐级查找嵌套 map
//
// "\#{" 输出字面量 "#{"，不产生参数。
package sqlparam

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lwmacct/251019-go-pkg-tokparse/pkg/tokparse"
)

const (
	openToken  = "#{"
	closeToken = "}"
)

var (
	// ErrInvalidParam 表示 #{...} 表达式格式错误。
	ErrInvalidParam = errors.New("sqlparam: invalid parameter expression")
	// ErrMissingValue 表示绑定时缺少参数值。
	ErrMissingValue = errors.New("sqlparam: missing parameter value")
	// ErrUnknownStyle 表示无法识别的占位符风格。
	ErrUnknownStyle = errors.New("sqlparam: unknown placeholder style")
)

// Style 占位符风格。
type Style int

const (
	// StyleQuestion 使用 "?"（MySQL、SQLite）。
	StyleQuestion Style = iota
	// StyleDollar 使用 "$1"、"$2"（PostgreSQL）。
	StyleDollar
)

// ParseStyle 解析占位符风格名称。
func ParseStyle(s string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "question", "?":
		return StyleQuestion, nil
	case "dollar", "$":
		return StyleDollar, nil
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownStyle, s)
}

// String 返回风格名称。
func (s Style) String() string {
	switch s {
	case StyleQuestion:
		return "question"
	case StyleDollar:
		return "dollar"
	}

	return "Style(" + strconv.Itoa(int(s)) + ")"
}

func (s Style) placeholder(n int) string {
	if s == StyleDollar {
		return "$" + strconv.Itoa(n)
	}

	return "?"
}

// Param 参数描述。
type Param struct {
	Name  string            `json:"name" yaml:"name"`
	Attrs map[string]string `json:"attrs,omitempty" yaml:"attrs,omitempty"`
}

// Statement 编译后的语句。
type Statement struct {
	SQL    string  `json:"sql" yaml:"sql"`
	Params []Param `json:"params" yaml:"params"`
}

// Compile 编译 sql 中的 #{...} 占位符。
func Compile(sql string, style Style) (*Statement, error) {
	params := make([]Param, 0)
	parser := tokparse.MustNew(openToken, closeToken, tokparse.HandlerFunc(func(expr string) (string, error) {
		param, err := parseParam(expr)
		if err != nil {
			return "", err
		}
		params = append(params, param)

		return style.placeholder(len(params)), nil
	}))

	out, err := parser.Parse(sql)
	if err != nil {
		return nil, err
	}

	return &Statement{SQL: out, Params: params}, nil
}

// parseParam 解析 "name, key=value" 或 "name:jdbcType"。
func parseParam(expr string) (Param, error) {
	parts := strings.Split(expr, ",")
	head := strings.TrimSpace(parts[0])

	var param Param
	if name, jdbcType, ok := strings.Cut(head, ":"); ok {
		name, jdbcType = strings.TrimSpace(name), strings.TrimSpace(jdbcType)
		if jdbcType == "" {
			return Param{}, fmt.Errorf("%w: empty jdbcType in %q", ErrInvalidParam, expr)
		}
		head = name
		param.Attrs = map[string]string{"jdbcType": jdbcType}
	}
	if head == "" || strings.ContainsAny(head, " \t\r\n") {
		return Param{}, fmt.Errorf("%w: bad name in %q", ErrInvalidParam, expr)
	}
	param.Name = head

	for _, part := range parts[1:] {
		key, value, ok := strings.Cut(part, "=")
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		if !ok || key == "" {
			return Param{}, fmt.Errorf("%w: attribute %q is not key=value", ErrInvalidParam, strings.TrimSpace(part))
		}
		if param.Attrs == nil {
			param.Attrs = make(map[string]string)
		}
		param.Attrs[key] = value
	}

	return param, nil
}

// Bind 按参数顺序从 values 中取值。
//
// 名称中的 "." 表示逐级查找 map[string]any。
func (s *Statement) Bind(values map[string]any) ([]any, error) {
	args := make([]any, 0, len(s.Params))
	for _, p := range s.Params {
		v, ok := lookup(values, p.Name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingValue, p.Name)
		}
		args = append(args, v)
	}

	return args, nil
}

func lookup(values map[string]any, path string) (any, bool) {
	if v, ok := values[path]; ok {
		return v, true
	}

	head, rest, ok := strings.Cut(path, ".")
	if !ok {
		return nil, false
	}
	child, ok := values[head].(map[string]any)
	if !ok {
		return nil, false
	}

	return lookup(child, rest)
}
