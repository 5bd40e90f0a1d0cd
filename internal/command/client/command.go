// Package client 提供 HTTP 客户端命令。
package client

import (
	"slices"

	"github.com/urfave/cli/v3"

	"github.com/lwmacct/251019-go-pkg-tokparse/internal/command"
)

// Command 客户端命令
var Command = NewCommand()

// NewCommand 创建新的命令实例。
func NewCommand() *cli.Command {
	return &cli.Command{
		Name:  "client",
		Usage: "HTTP 客户端工具",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "client-url",
				Aliases: []string{"s"},
				Value:   command.Defaults.Client.URL,
				Usage:   "服务器地址",
			},
			&cli.DurationFlag{
				Name:  "client-timeout",
				Value: command.Defaults.Client.Timeout,
				Usage: "请求超时时间",
			},
			&cli.IntFlag{
				Name:  "client-retries",
				Value: command.Defaults.Client.Retries,
				Usage: "重试次数",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "health",
				Usage:  "检查服务器健康状态",
				Action: healthAction,
			},
			{
				Name:      "expand",
				Usage:     "通过服务器展开文件或标准输入中的占位符",
				ArgsUsage: "[file]",
				Action:    expandAction,
				Flags: slices.Concat(
					command.ParserFlags(),
					command.VarFlags(),
				),
			},
			{
				Name:      "sql",
				Usage:     "通过服务器编译 SQL 参数占位符",
				ArgsUsage: "[file]",
				Action:    sqlAction,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "style",
						Value: "question",
						Usage: "占位符风格: question (?) | dollar ($1)",
					},
				},
			},
		},
	}
}
