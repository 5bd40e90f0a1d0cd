// Package server 提供 HTTP 服务器命令。
package server

import (
	"slices"

	"github.com/urfave/cli/v3"

	"github.com/lwmacct/251019-go-pkg-tokparse/internal/command"
)

// Command 服务器命令
var Command = &cli.Command{
	Name:   "server",
	Usage:  "启动 HTTP 服务器",
	Action: action,
	Flags: slices.Concat(
		[]cli.Flag{
			&cli.StringFlag{
				Name:    "server-addr",
				Aliases: []string{"a"},
				Value:   command.Defaults.Server.Addr,
				Usage:   "服务器监听地址",
			},
			&cli.DurationFlag{
				Name:  "server-timeout",
				Value: command.Defaults.Server.Timeout,
				Usage: "HTTP 读写超时",
			},
			&cli.DurationFlag{
				Name:  "server-idletime",
				Value: command.Defaults.Server.Idletime,
				Usage: "HTTP 空闲超时",
			},
			&cli.Int64Flag{
				Name:  "server-max-body",
				Value: command.Defaults.Server.MaxBody,
				Usage: "请求体最大字节数",
			},
		},
		command.ParserFlags(),
	),
}
