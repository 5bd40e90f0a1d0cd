package templexp

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"strings"

	"github.com/lwmacct/251019-go-pkg-tokparse/pkg/tokparse"
)

const (
	// DefaultOpen 默认开始定界符。
	DefaultOpen = "${"
	// DefaultClose 默认结束定界符。
	DefaultClose = "}"
)

// ErrParameterNotSet 表示必填参数未设置（${VAR?msg} 或严格模式下的 ${VAR}）。
var ErrParameterNotSet = errors.New("parameter null or not set")

// ═══════════════════════════════════════════════════════════════════════════
// 展开器
// ═══════════════════════════════════════════════════════════════════════════

// Expander 执行 Shell 参数展开。创建后不可变，可并发使用。
type Expander struct {
	open   string
	close  string
	vars   map[string]string
	useEnv bool
	strict bool
}

// Option 展开器选项函数。
type Option func(*Expander)

// WithDelimiters 设置定界符，默认为 "${" 与 "}"。
func WithDelimiters(open, close string) Option {
	return func(e *Expander) {
		e.open = open
		e.close = close
	}
}

// WithVars 追加变量，优先级高于环境变量；多次调用时后者覆盖前者。
func WithVars(vars map[string]string) Option {
	return func(e *Expander) {
		maps.Copy(e.vars, vars)
	}
}

// WithoutEnv 不读取进程环境变量，仅使用 [WithVars] 提供的变量。
func WithoutEnv() Option {
	return func(e *Expander) {
		e.useEnv = false
	}
}

// WithStrict 启用严格模式：未设置的 ${VAR} 返回 [ErrParameterNotSet] 而非空字符串。
func WithStrict() Option {
	return func(e *Expander) {
		e.strict = true
	}
}

// New 创建展开器，定界符为空时返回 error。
func New(opts ...Option) (*Expander, error) {
	e := &Expander{
		open:   DefaultOpen,
		close:  DefaultClose,
		vars:   make(map[string]string),
		useEnv: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.open == "" || e.close == "" {
		return nil, fmt.Errorf("templexp: %w", tokparse.ErrEmptyDelimiter)
	}

	return e, nil
}

// Expand 对 text 执行参数展开。
//
// 每次调用使用独立的变量快照，":=" 的赋值只在本次调用内可见。
func (e *Expander) Expand(text string) (string, error) {
	data := e.templateData()

	var parser *tokparse.Parser
	parser = tokparse.MustNew(e.open, e.close, tokparse.HandlerFunc(func(expr string) (string, error) {
		return e.expandExpression(expr, data, parser)
	}))

	return parser.Parse(text)
}

// IsDynamic 判断 text 是否包含至少一个已闭合的表达式。
func (e *Expander) IsDynamic(text string) bool {
	dynamic := false
	parser := tokparse.MustNew(e.open, e.close, tokparse.HandlerFunc(func(string) (string, error) {
		dynamic = true
		return "", nil
	}))
	_, _ = parser.Parse(text)

	return dynamic
}

// templateData 生成本次展开使用的变量快照。
func (e *Expander) templateData() map[string]string {
	vars := make(map[string]string)
	if e.useEnv {
		for _, env := range os.Environ() {
			key, val, ok := strings.Cut(env, "=")
			if ok {
				vars[key] = val
			}
		}
	}
	maps.Copy(vars, e.vars)

	return vars
}

// ═══════════════════════════════════════════════════════════════════════════
// Shell Parameter Expansion
// ═══════════════════════════════════════════════════════════════════════════

func isVarNameStart(ch byte) bool {
	return (ch >= 'A' && ch <= 'Z') || (ch >= 'a' && ch <= 'z') || ch == '_'
}

func isVarNameChar(ch byte) bool {
	return isVarNameStart(ch) || (ch >= '0' && ch <= '9') || ch == '.'
}

// parseShellParameter 拆分表达式为 name / op / word。
func parseShellParameter(expr string) (string, string, string, bool) {
	if expr == "" {
		return "", "", "", false
	}
	if !isVarNameStart(expr[0]) {
		return "", "", "", false
	}

	i := 1
	for i < len(expr) && isVarNameChar(expr[i]) {
		i++
	}

	name := expr[:i]
	rest := expr[i:]
	if rest == "" {
		return name, "", "", true
	}

	if len(rest) >= 2 && rest[0] == ':' {
		switch rest[1] {
		case '-', '+', '?', '=':
			return name, rest[:2], rest[2:], true
		}
	}

	switch rest[0] {
	case '-', '+', '?', '=':
		return name, rest[:1], rest[1:], true
	}

	return "", "", "", false
}

func errorMessage(name, word string) error {
	if word == "" {
		return fmt.Errorf("templexp: %s: %w", name, ErrParameterNotSet)
	}

	return fmt.Errorf("templexp: %s: %s: %w", name, word, ErrParameterNotSet)
}

// expandWord 展开 word 中经转义 close 保留下来的表达式，例如 ${A:-${B\}}。
func (e *Expander) expandWord(name, word string, parser *tokparse.Parser) (string, error) {
	if !strings.Contains(word, e.open) {
		return word, nil
	}
	if e.danglingOpen(word) {
		slog.Warn("Nested placeholder in default value is kept literally, escape its close delimiter",
			"name", name, "word", word, "hint", e.open+"B\\"+e.close)
	}

	return parser.Parse(word)
}

// danglingOpen 报告 word 中是否有未转义且未闭合的 open，
// 即 ${A:-${B}} 被外层表达式截断后留下的 "${B"。
func (e *Expander) danglingOpen(word string) bool {
	for i := 0; ; {
		j := strings.Index(word[i:], e.open)
		if j < 0 {
			return false
		}
		start := i + j
		i = start + len(e.open)
		if start > 0 && word[start-1] == '\\' {
			continue
		}
		end := strings.Index(word[i:], e.close)
		if end < 0 {
			return true
		}
		i += end + len(e.close)
	}
}

// verbatim 原样输出无法识别的表达式，表达式内的 close 重新转义，
// 使输出再次展开时得到相同结果。
func (e *Expander) verbatim(expr string) string {
	return e.open + strings.ReplaceAll(expr, e.close, "\\"+e.close) + e.close
}

func (e *Expander) expandExpression(expr string, env map[string]string, parser *tokparse.Parser) (string, error) {
	name, op, word, ok := parseShellParameter(expr)
	if !ok {
		return e.verbatim(expr), nil
	}

	val, isSet := env[name]
	switch op {
	case "":
		if isSet {
			return val, nil
		}
		if e.strict {
			return "", errorMessage(name, "")
		}
		return "", nil
	case ":-":
		if !isSet || val == "" {
			return e.expandWord(name, word, parser)
		}
		return val, nil
	case "-":
		if !isSet {
			return e.expandWord(name, word, parser)
		}
		return val, nil
	case ":+": // set and not empty
		if isSet && val != "" {
			return e.expandWord(name, word, parser)
		}
		return "", nil
	case "+":
		if isSet {
			return e.expandWord(name, word, parser)
		}
		return "", nil
	case ":?":
		if !isSet || val == "" {
			return "", errorMessage(name, word)
		}
		return val, nil
	case "?":
		if !isSet {
			return "", errorMessage(name, word)
		}
		return val, nil
	case ":=":
		if !isSet || val == "" {
			expanded, err := e.expandWord(name, word, parser)
			if err != nil {
				return "", err
			}
			env[name] = expanded
			return expanded, nil
		}
		return val, nil
	case "=":
		if !isSet {
			expanded, err := e.expandWord(name, word, parser)
			if err != nil {
				return "", err
			}
			env[name] = expanded
			return expanded, nil
		}
		return val, nil
	}

	return e.verbatim(expr), nil
}

// ═══════════════════════════════════════════════════════════════════════════
// 模板渲染
// ═══════════════════════════════════════════════════════════════════════════

// ExpandTemplate 使用进程环境变量对输入字符串执行 Shell 参数展开。
//
// 支持语法：
//   - ${VAR} - 变量替换
//   - ${VAR:-default} / ${VAR-default} - fallback
//   - ${VAR:+alt} / ${VAR+alt} - 替代值
//   - ${VAR:?msg} / ${VAR?msg} - 必填校验
//   - ${VAR:=default} / ${VAR=default} - 赋值（仅作用于当前展开）
//   - \${VAR} - 字面量 ${VAR}
//
// 返回展开后的字符串；仅在必填校验失败时返回 error。
func ExpandTemplate(text string) (string, error) {
	e, _ := New()
	return e.Expand(text)
}

// ExpandTemplateWith 与 [ExpandTemplate] 相同，但 vars 覆盖同名环境变量。
func ExpandTemplateWith(text string, vars map[string]string) (string, error) {
	e, _ := New(WithVars(vars))
	return e.Expand(text)
}
