package templexp_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lwmacct/251019-go-pkg-tokparse/pkg/templexp"
	"github.com/lwmacct/251019-go-pkg-tokparse/pkg/tokparse"
)

func TestExpandTemplate_ShellParameterExpansion(t *testing.T) {
	t.Setenv("SHELL_SET", "set-value")
	t.Setenv("SHELL_EMPTY", "")

	tests := []struct {
		name     string
		template string
		want     string
		wantErr  bool
		errMsg   string
	}{
		{
			name:     "basic expansion",
			template: `prefix-${SHELL_SET}-suffix`,
			want:     "prefix-set-value-suffix",
		},
		{
			name:     "missing expands to empty",
			template: `x=${SHELL_MISSING}`,
			want:     "x=",
		},
		{
			name:     "fallback with colon treats empty as unset",
			template: `${SHELL_EMPTY:-fallback}`,
			want:     "fallback",
		},
		{
			name:     "fallback without colon keeps empty",
			template: `x=${SHELL_EMPTY-fallback}`,
			want:     "x=",
		},
		{
			name:     "alternate with colon",
			template: `${SHELL_SET:+alt}`,
			want:     "alt",
		},
		{
			name:     "alternate without value",
			template: `[${SHELL_MISSING+alt}]`,
			want:     "[]",
		},
		{
			name:     "fallback expands escaped inner expression",
			template: `${SHELL_MISSING:-${SHELL_SET\}}`,
			want:     "set-value",
		},
		{
			name:     "nested without escape binds to first close",
			template: `${SHELL_MISSING:-${SHELL_SET}}`,
			want:     "${SHELL_SET}",
		},
		{
			name:     "assignment updates template data",
			template: `${SHELL_NEW:=value}-${SHELL_NEW}`,
			want:     "value-value",
		},
		{
			name:     "escaped open is literal",
			template: `\${SHELL_SET}`,
			want:     "${SHELL_SET}",
		},
		{
			name:     "escaped close in fallback word",
			template: `${SHELL_MISSING:-a\}b}`,
			want:     "a}b",
		},
		{
			name:     "unrecognized expression kept",
			template: `${1abc} ${A B}`,
			want:     "${1abc} ${A B}",
		},
		{
			name:     "unrecognized expression re-escapes close",
			template: `${1a\}b}`,
			want:     `${1a\}b}`,
		},
		{
			name:     "unterminated kept",
			template: `x ${SHELL_SET`,
			want:     "x ${SHELL_SET",
		},
		{
			name:     "dotted property key",
			template: `${db.url:-jdbc:local}`,
			want:     "jdbc:local",
		},
		{
			name:     "required var triggers error",
			template: `${SHELL_MISSING:?missing}`,
			wantErr:  true,
			errMsg:   "missing",
		},
		{
			name:     "required var without message",
			template: `${SHELL_EMPTY:?}`,
			wantErr:  true,
			errMsg:   "parameter null or not set",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := templexp.ExpandTemplate(tt.template)
			if tt.wantErr {
				require.Error(t, err)
				require.ErrorIs(t, err, templexp.ErrParameterNotSet)
				assert.Contains(t, err.Error(), tt.errMsg)

				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpandTemplate_JSONConfig(t *testing.T) {
	t.Setenv("API_KEY", "sk-test-123")
	t.Setenv("MODEL", "gpt-4")

	jsonConfig := `{"name": "${AGENT_NAME:-test-agent}", "model": "${MODEL:-gpt-3.5-turbo}", "api_key": "${API_KEY}", "max_tokens": 2048}`

	expanded, err := templexp.ExpandTemplate(jsonConfig)
	require.NoError(t, err, "templexp.ExpandTemplate() should succeed")
	assert.NotEmpty(t, expanded, "templexp.ExpandTemplate() should return non-empty string")
	assert.Contains(t, expanded, "test-agent", "AGENT_NAME should fall back")
	assert.Contains(t, expanded, "gpt-4", "MODEL should be expanded to gpt-4")
	assert.Contains(t, expanded, "sk-test-123", "API_KEY should be expanded")
}

func TestExpandTemplateWith_VarsOverrideEnv(t *testing.T) {
	t.Setenv("OVERRIDE_ME", "from-env")

	got, err := templexp.ExpandTemplateWith(`${OVERRIDE_ME}/${ONLY_VAR}`, map[string]string{
		"OVERRIDE_ME": "from-vars",
		"ONLY_VAR":    "x",
	})
	require.NoError(t, err)
	assert.Equal(t, "from-vars/x", got)
}

func TestExpander_Options(t *testing.T) {
	t.Setenv("TEMPLEXP_ENV_ONLY", "env")

	t.Run("without env", func(t *testing.T) {
		e, err := templexp.New(templexp.WithoutEnv(), templexp.WithVars(map[string]string{"a": "1"}))
		require.NoError(t, err)

		got, err := e.Expand(`${a}|${TEMPLEXP_ENV_ONLY}`)
		require.NoError(t, err)
		assert.Equal(t, "1|", got)
	})

	t.Run("custom delimiters", func(t *testing.T) {
		e, err := templexp.New(
			templexp.WithDelimiters("{{", "}}"),
			templexp.WithVars(map[string]string{"name": "demo"}),
		)
		require.NoError(t, err)

		got, err := e.Expand(`hello {{name}} ${name} \{{name}}`)
		require.NoError(t, err)
		assert.Equal(t, "hello demo ${name} {{name}}", got)
	})

	t.Run("strict mode rejects unset", func(t *testing.T) {
		e, err := templexp.New(templexp.WithStrict(), templexp.WithoutEnv())
		require.NoError(t, err)

		_, err = e.Expand(`ok ${UNSET_VAR}`)
		require.ErrorIs(t, err, templexp.ErrParameterNotSet)
		assert.Contains(t, err.Error(), "UNSET_VAR")

		got, err := e.Expand(`${UNSET_VAR:-fine}`)
		require.NoError(t, err)
		assert.Equal(t, "fine", got)
	})

	t.Run("empty delimiter rejected", func(t *testing.T) {
		_, err := templexp.New(templexp.WithDelimiters("", "}"))
		require.ErrorIs(t, err, tokparse.ErrEmptyDelimiter)
	})

	t.Run("assignment does not leak across calls", func(t *testing.T) {
		e, err := templexp.New(templexp.WithoutEnv())
		require.NoError(t, err)

		first, err := e.Expand(`${X:=1}`)
		require.NoError(t, err)
		assert.Equal(t, "1", first)

		second, err := e.Expand(`[${X}]`)
		require.NoError(t, err)
		assert.Equal(t, "[]", second)
	})
}

func TestExpander_IsDynamic(t *testing.T) {
	e, err := templexp.New()
	require.NoError(t, err)

	assert.True(t, e.IsDynamic("select ${col} from t"))
	assert.True(t, e.IsDynamic("${}"))
	assert.False(t, e.IsDynamic("select 1"))
	assert.False(t, e.IsDynamic(`\${col}`))
	assert.False(t, e.IsDynamic("${unterminated"))
	assert.False(t, e.IsDynamic(""))
}

func TestExpander_UnrecognizedRoundTrip(t *testing.T) {
	e, err := templexp.New(templexp.WithoutEnv(), templexp.WithDelimiters("<<", ">>"))
	require.NoError(t, err)

	for _, text := range []string{`${1a\}b}`, `<<1a\>>b>>`, `<<a b>> <<-x\>>\>>>>`} {
		first, err := e.Expand(text)
		require.NoError(t, err)
		second, err := e.Expand(first)
		require.NoError(t, err)
		assert.Equal(t, first, second, text)
	}

	out, err := e.Expand(`<<1a\>>b>>`)
	require.NoError(t, err)
	assert.Equal(t, `<<1a\>>b>>`, out)
}

func captureWarnings(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})))
	t.Cleanup(func() { slog.SetDefault(prev) })

	return &buf
}

func TestExpander_NestedDefaultWarns(t *testing.T) {
	e, err := templexp.New(templexp.WithoutEnv(), templexp.WithVars(map[string]string{"B": "bee"}))
	require.NoError(t, err)

	t.Run("unescaped inner close", func(t *testing.T) {
		logs := captureWarnings(t)

		out, err := e.Expand(`${A:-${B}}`)
		require.NoError(t, err)
		assert.Equal(t, "${B}", out)
		assert.Contains(t, logs.String(), "Nested placeholder")
		assert.Contains(t, logs.String(), "name=A")
	})

	t.Run("escaped inner close", func(t *testing.T) {
		logs := captureWarnings(t)

		out, err := e.Expand(`${A:-${B\}}`)
		require.NoError(t, err)
		assert.Equal(t, "bee", out)
		assert.Empty(t, logs.String())
	})

	t.Run("escaped inner open", func(t *testing.T) {
		logs := captureWarnings(t)

		out, err := e.Expand(`${A:-\${B}`)
		require.NoError(t, err)
		assert.Equal(t, "${B", out)
		assert.Empty(t, logs.String())
	})
}
