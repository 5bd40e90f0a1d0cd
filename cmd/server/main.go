package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/lwmacct/251019-go-pkg-tokparse/internal/command"
	"github.com/lwmacct/251019-go-pkg-tokparse/internal/command/server"
	"github.com/lwmacct/251019-go-pkg-tokparse/internal/version"
)

func main() {
	app := &cli.Command{
		Name:           version.AppRawName + "-server",
		Usage:          "占位符展开 HTTP 服务",
		Version:        version.GetVersion(),
		Flags:          command.GlobalFlags(),
		Before:         command.SetupLogging,
		DefaultCommand: server.Command.Name,
		Commands:       []*cli.Command{server.Command},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		slog.Error("应用程序运行失败", "error", err)
		os.Exit(1)
	}
}
