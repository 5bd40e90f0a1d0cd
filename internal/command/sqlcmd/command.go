// Package sqlcmd 提供 SQL 参数占位符编译命令。
package sqlcmd

import (
	"github.com/urfave/cli/v3"
)

// Command SQL 编译命令
var Command = NewCommand()

// NewCommand 创建新的命令实例；flag 状态保存在实例中，重复运行时应各自创建。
func NewCommand() *cli.Command {
	return &cli.Command{
		Name:      "sql",
		Usage:     "将 SQL 中的 #{...} 参数编译为驱动占位符",
		ArgsUsage: "[file]",
		Action:    action,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "style",
				Value: "question",
				Usage: "占位符风格: question (?) | dollar ($1)",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "json",
				Usage:   "输出格式: json | yaml | sql",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "输出文件（默认标准输出）",
			},
		},
	}
}
