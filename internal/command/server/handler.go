package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/lwmacct/251019-go-pkg-tokparse/internal/config"
	"github.com/lwmacct/251019-go-pkg-tokparse/internal/varsource"
	"github.com/lwmacct/251019-go-pkg-tokparse/internal/version"
	"github.com/lwmacct/251019-go-pkg-tokparse/pkg/sqlparam"
	"github.com/lwmacct/251019-go-pkg-tokparse/pkg/templexp"
)

// RequestIDHeader 请求 ID 头。
const RequestIDHeader = "X-Request-ID"

// ExpandRequest POST /v1/expand 请求体。
type ExpandRequest struct {
	Text   string            `json:"text"`
	Vars   map[string]string `json:"vars,omitempty"`
	Open   string            `json:"open,omitempty"`
	Close  string            `json:"close,omitempty"`
	Strict *bool             `json:"strict,omitempty"`
}

// ExpandResponse POST /v1/expand 响应体。
type ExpandResponse struct {
	Result string `json:"result"`
}

// SQLRequest POST /v1/sql 请求体。
type SQLRequest struct {
	SQL   string `json:"sql"`
	Style string `json:"style,omitempty"`
}

// ErrorResponse 错误响应体。
type ErrorResponse struct {
	Error string `json:"error"`
}

type api struct {
	parser   config.ParserConfig
	baseVars map[string]string
	maxBody  int64
}

// NewHandler 创建 HTTP 路由。
//
// 展开时不读取服务端进程环境变量，parser.env-files 提供基础变量，请求中的 vars 覆盖之。
func NewHandler(cfg config.Config) (http.Handler, error) {
	baseVars, err := varsource.Load(varsource.Sources{EnvFiles: cfg.Parser.EnvFiles})
	if err != nil {
		return nil, err
	}

	a := &api{
		parser:   cfg.Parser,
		baseVars: baseVars,
		maxBody:  cfg.Server.MaxBody,
	}

	mux := http.NewServeMux()
	// 健康检查端点
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("POST /v1/expand", a.handleExpand)
	mux.HandleFunc("POST /v1/sql", a.handleSQL)

	// 默认首页（{$} 精确匹配根路径）
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"name": version.AppRawName, "version": version.GetVersion()})
	})

	return withRequestID(mux), nil
}

func (a *api) handleExpand(w http.ResponseWriter, r *http.Request) {
	var req ExpandRequest
	if !a.decode(w, r, &req) {
		return
	}

	openTok, closeTok := a.parser.Open, a.parser.Close
	if req.Open != "" {
		openTok = req.Open
	}
	if req.Close != "" {
		closeTok = req.Close
	}
	strict := a.parser.Strict
	if req.Strict != nil {
		strict = *req.Strict
	}

	opts := []templexp.Option{
		templexp.WithDelimiters(openTok, closeTok),
		templexp.WithoutEnv(),
		templexp.WithVars(a.baseVars),
		templexp.WithVars(req.Vars),
	}
	if strict {
		opts = append(opts, templexp.WithStrict())
	}
	expander, err := templexp.New(opts...)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := expander.Expand(req.Text)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	writeJSON(w, http.StatusOK, ExpandResponse{Result: result})
}

func (a *api) handleSQL(w http.ResponseWriter, r *http.Request) {
	var req SQLRequest
	if !a.decode(w, r, &req) {
		return
	}

	style, err := sqlparam.ParseStyle(req.Style)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	stmt, err := sqlparam.Compile(req.SQL, style)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	writeJSON(w, http.StatusOK, stmt)
}

// decode 解析 JSON 请求体，失败时直接写入 400/413 响应。
func (a *api) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if a.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, a.maxBody)
	}

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, err)
			return false
		}
		writeError(w, http.StatusBadRequest, err)

		return false
	}

	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Write response failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

// statusRecorder 记录响应状态码用于访问日志。
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withRequestID 为每个请求分配 X-Request-ID 并记录访问日志。
//
// 客户端提供合法 UUID 时沿用，否则生成新的 UUID。
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		slog.Info("HTTP request",
			"request_id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
