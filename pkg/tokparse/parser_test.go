package tokparse_test

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lwmacct/251019-go-pkg-tokparse/pkg/tokparse"
)

// recorder 记录 Handler 的调用顺序，并把表达式包成 [expr]。
type recorder struct {
	calls []string
}

func (r *recorder) HandleToken(expr string) (string, error) {
	r.calls = append(r.calls, expr)
	return "[" + expr + "]", nil
}

func TestParser_Parse(t *testing.T) {
	tests := []struct {
		name      string
		open      string
		close     string
		text      string
		want      string
		wantCalls []string
	}{
		{
			name: "empty text",
			open: "${", close: "}",
			text: "",
			want: "",
		},
		{
			name: "no open delimiter",
			open: "${", close: "}",
			text: "plain } text",
			want: "plain } text",
		},
		{
			name: "single expression",
			open: "${", close: "}",
			text: "hello ${name}!",
			want:      "hello [name]!",
			wantCalls: []string{"name"},
		},
		{
			name: "expression at both ends",
			open: "${", close: "}",
			text: "${a}-${b}",
			want:      "[a]-[b]",
			wantCalls: []string{"a", "b"},
		},
		{
			name: "empty expression",
			open: "${", close: "}",
			text: "x${}y",
			want:      "x[]y",
			wantCalls: []string{""},
		},
		{
			name: "escaped open is literal",
			open: "${", close: "}",
			text: `\${x}`,
			want: "${x}",
		},
		{
			name: "escaped open followed by real expression",
			open: "${", close: "}",
			text: `\${a} ${b}`,
			want:      "${a} [b]",
			wantCalls: []string{"b"},
		},
		{
			name: "double backslash only strips one",
			open: "${", close: "}",
			text: `\\${x}`,
			want: `\${x}`,
		},
		{
			name: "escaped close inside expression",
			open: "${", close: "}",
			text: `${a\}b}`,
			want:      "[a}b]",
			wantCalls: []string{"a}b"},
		},
		{
			name: "multiple escaped close",
			open: "${", close: "}",
			text: `${a\}b\}c}tail`,
			want:      "[a}b}c]tail",
			wantCalls: []string{"a}b}c"},
		},
		{
			name: "unterminated expression passes through",
			open: "${", close: "}",
			text: "a ${bcd",
			want: "a ${bcd",
		},
		{
			name: "unterminated after escaped close keeps backslash",
			open: "${", close: "}",
			text: `x ${a\}b`,
			want: `x ${a\}b`,
		},
		{
			name: "unterminated after a match",
			open: "${", close: "}",
			text: "${a} ${b",
			want:      "[a] ${b",
			wantCalls: []string{"a"},
		},
		{
			name: "open at end of input",
			open: "${", close: "}",
			text: "abc${",
			want: "abc${",
		},
		{
			name: "escaped open in the middle of text",
			open: "${", close: "}",
			text: `C:\dir\${x}\n`,
			want: `C:\dir${x}\n`,
		},
		{
			name: "backslash not before delimiter",
			open: "${", close: "}",
			text: `a\b ${x}`,
			want:      `a\b [x]`,
			wantCalls: []string{"x"},
		},
		{
			name: "close before open is literal",
			open: "${", close: "}",
			text: "} ${x} }",
			want:      "} [x] }",
			wantCalls: []string{"x"},
		},
		{
			name: "nested open binds to first close",
			open: "${", close: "}",
			text: "${a${b}}",
			want:      "[a${b]}",
			wantCalls: []string{"a${b"},
		},
		{
			name: "identical delimiters",
			open: "|", close: "|",
			text: "a|x|b|y|c",
			want:      "a[x]b[y]c",
			wantCalls: []string{"x", "y"},
		},
		{
			name: "close is prefix of open",
			open: "{{", close: "{",
			text: "a{{x{b",
			want:      "a[x]b",
			wantCalls: []string{"x"},
		},
		{
			name: "multi character close",
			open: "<%", close: "%>",
			text: "<% a %> and <% b %%>",
			want:      "[ a ] and [ b %]",
			wantCalls: []string{" a ", " b %"},
		},
		{
			name: "mybatis style parameter",
			open: "#{", close: "}",
			text: "select * from t where id = #{id} and name = '${name}'",
			want:      "select * from t where id = [id] and name = '${name}'",
			wantCalls: []string{"id"},
		},
		{
			name: "multi-byte text",
			open: "${", close: "}",
			text: "名前=${名}、年齢=${年齢}",
			want:      "名前=[名]、年齢=[年齢]",
			wantCalls: []string{"名", "年齢"},
		},
		{
			name: "multi-byte delimiters",
			open: "「", close: "」",
			text: "a「b」c\\「d」",
			want:      "a[b]c「d」",
			wantCalls: []string{"b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			p, err := tokparse.New(tt.open, tt.close, rec)
			require.NoError(t, err)

			got, err := p.Parse(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantCalls, rec.calls)
		})
	}
}

func TestParser_Parse_SubstitutesInOrder(t *testing.T) {
	values := map[string]string{"x": "1", "y": "2"}
	var calls []string
	p := tokparse.MustNew("${", "}", tokparse.HandlerFunc(func(expr string) (string, error) {
		calls = append(calls, expr)
		return values[expr], nil
	}))

	got, err := p.Parse("a=${x},b=${y}")
	require.NoError(t, err)
	assert.Equal(t, "a=1,b=2", got)
	assert.Equal(t, []string{"x", "y"}, calls)
}

func TestParser_Parse_HandlerError(t *testing.T) {
	errBoom := errors.New("boom")
	var calls []string
	p := tokparse.MustNew("${", "}", tokparse.HandlerFunc(func(expr string) (string, error) {
		calls = append(calls, expr)
		if expr == "b" {
			return "", errBoom
		}
		return expr, nil
	}))

	got, err := p.Parse("${a} ${b} ${c}")
	require.Error(t, err)
	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, errBoom, err, "handler error must be returned unchanged")
	assert.Empty(t, got)
	assert.Equal(t, []string{"a", "b"}, calls, "scan stops at the failing expression")
}

func TestParser_Parse_NoDelimitersIsIdentity(t *testing.T) {
	p := tokparse.MustNew("${", "}", tokparse.HandlerFunc(func(string) (string, error) {
		t.Fatal("handler must not be called")
		return "", nil
	}))

	inputs := []string{"a", "plain text", `back\slash`, "}{$", "$ {x}", "多字节文本"}
	for _, in := range inputs {
		once, err := p.Parse(in)
		require.NoError(t, err)
		assert.Equal(t, in, once)

		twice, err := p.Parse(once)
		require.NoError(t, err)
		assert.Equal(t, once, twice)
	}
}

func TestNew_Validation(t *testing.T) {
	h := tokparse.HandlerFunc(func(s string) (string, error) { return s, nil })

	tests := []struct {
		name    string
		open    string
		close   string
		handler tokparse.Handler
		wantErr error
	}{
		{name: "empty open", open: "", close: "}", handler: h, wantErr: tokparse.ErrEmptyDelimiter},
		{name: "empty close", open: "${", close: "", handler: h, wantErr: tokparse.ErrEmptyDelimiter},
		{name: "nil handler", open: "${", close: "}", handler: nil, wantErr: tokparse.ErrNilHandler},
		{name: "nil handler func", open: "${", close: "}", handler: tokparse.HandlerFunc(nil), wantErr: tokparse.ErrNilHandler},
		{name: "valid", open: "${", close: "}", handler: h},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := tokparse.New(tt.open, tt.close, tt.handler)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, p)

				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.open, p.Open())
			assert.Equal(t, tt.close, p.Close())
		})
	}
}

func TestMustNew_Panics(t *testing.T) {
	assert.Panics(t, func() {
		tokparse.MustNew("", "}", tokparse.HandlerFunc(func(s string) (string, error) { return s, nil }))
	})
}

func TestParser_Parse_Concurrent(t *testing.T) {
	p := tokparse.MustNew("${", "}", tokparse.HandlerFunc(func(expr string) (string, error) {
		return strings.ToUpper(expr), nil
	}))

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			in := fmt.Sprintf("n=${v%d} m=${w%d}", i, i)
			want := fmt.Sprintf("n=V%d m=W%d", i, i)
			got, err := p.Parse(in)
			if err != nil {
				errs <- err
				return
			}
			if got != want {
				errs <- fmt.Errorf("got %q, want %q", got, want)
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}
