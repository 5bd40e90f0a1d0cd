package tokparse

import (
	"errors"
	"fmt"
	"strings"
)

const escapeChar = '\\'

var (
	// ErrEmptyDelimiter 表示 open 或 close 为空字符串。
	ErrEmptyDelimiter = errors.New("tokparse: delimiter must not be empty")
	// ErrNilHandler 表示未提供 Handler。
	ErrNilHandler = errors.New("tokparse: handler must not be nil")
)

// Parser 定界符扫描器。
type Parser struct {
	openToken  string
	closeToken string
	handler    Handler
}

// New 创建 Parser。
//
// open 与 close 不能为空；两者相同、重叠或互为前缀均合法，
// 扫描始终先查找 open，再从其后查找 close。
func New(open, close string, handler Handler) (*Parser, error) {
	if open == "" || close == "" {
		return nil, fmt.Errorf("%w (open=%q, close=%q)", ErrEmptyDelimiter, open, close)
	}
	if isNilHandler(handler) {
		return nil, ErrNilHandler
	}

	return &Parser{
		openToken:  open,
		closeToken: close,
		handler:    handler,
	}, nil
}

// MustNew 调用 [New] 并在失败时 panic，适合包级变量初始化。
func MustNew(open, close string, handler Handler) *Parser {
	p, err := New(open, close, handler)
	if err != nil {
		panic(err)
	}

	return p
}

// Open 返回开始定界符。
func (p *Parser) Open() string { return p.openToken }

// Close 返回结束定界符。
func (p *Parser) Close() string { return p.closeToken }

// Parse 扫描 text 并替换所有未转义、已闭合的表达式。
//
// Handler 按表达式在文本中出现的顺序依次调用。
// Handler 返回 error 时立即中止扫描，原样返回该 error。
func (p *Parser) Parse(text string) (string, error) {
	if text == "" {
		return "", nil
	}

	start := strings.Index(text, p.openToken)
	if start == -1 {
		return text, nil
	}

	var (
		buf    strings.Builder
		expr   strings.Builder
		offset int
	)
	buf.Grow(len(text))

	for start > -1 {
		if start > offset && text[start-1] == escapeChar {
			// 转义的 open：去掉反斜杠，按字面输出
			buf.WriteString(text[offset : start-1])
			buf.WriteString(p.openToken)
			offset = start + len(p.openToken)
		} else {
			expr.Reset()
			buf.WriteString(text[offset:start])
			offset = start + len(p.openToken)

			end := indexFrom(text, p.closeToken, offset)
			for end > -1 {
				if end > offset && text[end-1] == escapeChar {
					// 转义的 close 属于表达式内容
					expr.WriteString(text[offset : end-1])
					expr.WriteString(p.closeToken)
					offset = end + len(p.closeToken)
					end = indexFrom(text, p.closeToken, offset)

					continue
				}
				expr.WriteString(text[offset:end])

				break
			}

			if end == -1 {
				// 未闭合：从 open 开始原样输出剩余内容
				buf.WriteString(text[start:])
				offset = len(text)
			} else {
				val, err := p.handler.HandleToken(expr.String())
				if err != nil {
					return "", err
				}
				buf.WriteString(val)
				offset = end + len(p.closeToken)
			}
		}

		start = indexFrom(text, p.openToken, offset)
	}

	if offset < len(text) {
		buf.WriteString(text[offset:])
	}

	return buf.String(), nil
}

func indexFrom(s, substr string, from int) int {
	if from >= len(s) {
		return -1
	}
	i := strings.Index(s[from:], substr)
	if i == -1 {
		return -1
	}

	return from + i
}
