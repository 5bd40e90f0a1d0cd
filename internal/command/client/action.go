package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/urfave/cli/v3"

	"github.com/lwmacct/251019-go-pkg-tokparse/internal/command"
	"github.com/lwmacct/251019-go-pkg-tokparse/internal/command/server"
	"github.com/lwmacct/251019-go-pkg-tokparse/internal/varsource"
)

func healthAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := command.LoadConfig(cmd)
	if err != nil {
		return err
	}

	var out map[string]string
	if err := NewAPIClient(cfg.Client).Do(ctx, http.MethodGet, "/health", nil, &out); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	_, err = fmt.Fprintf(cmd.Root().Writer, "%s: %s\n", cfg.Client.URL, out["status"])

	return err
}

func expandAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := command.LoadConfig(cmd)
	if err != nil {
		return err
	}

	input, err := command.ReadInput(cmd)
	if err != nil {
		return err
	}

	// 变量在本地汇总后随请求发送，服务器不读取本地环境
	src := command.Sources(cmd)
	src.EnvFiles = cfg.Parser.EnvFiles
	vars, err := varsource.Load(src)
	if err != nil {
		return err
	}

	strict := cfg.Parser.Strict
	req := server.ExpandRequest{
		Text:   input,
		Vars:   vars,
		Open:   cfg.Parser.Open,
		Close:  cfg.Parser.Close,
		Strict: &strict,
	}

	var resp server.ExpandResponse
	if err := NewAPIClient(cfg.Client).Do(ctx, http.MethodPost, "/v1/expand", req, &resp); err != nil {
		return err
	}

	return command.WriteOutput(cmd, "", []byte(resp.Result))
}

func sqlAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := command.LoadConfig(cmd)
	if err != nil {
		return err
	}

	input, err := command.ReadInput(cmd)
	if err != nil {
		return err
	}

	var resp json.RawMessage
	req := server.SQLRequest{SQL: input, Style: cmd.String("style")}
	if err := NewAPIClient(cfg.Client).Do(ctx, http.MethodPost, "/v1/sql", req, &resp); err != nil {
		return err
	}

	return command.WriteOutput(cmd, "", append(resp, '\n'))
}
