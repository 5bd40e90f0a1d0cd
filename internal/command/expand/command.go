// Package expand 提供占位符展开命令。
package expand

import (
	"slices"

	"github.com/urfave/cli/v3"

	"github.com/lwmacct/251019-go-pkg-tokparse/internal/command"
)

// Command 展开命令
var Command = NewCommand()

// NewCommand 创建新的命令实例；flag 状态保存在实例中，重复运行时应各自创建。
func NewCommand() *cli.Command {
	return &cli.Command{
		Name:      "expand",
		Usage:     "展开文件或标准输入中的 ${...} 占位符",
		ArgsUsage: "[file]",
		Action:    action,
		Flags: slices.Concat(
			command.ParserFlags(),
			command.VarFlags(),
			[]cli.Flag{
				&cli.StringFlag{
					Name:    "output",
					Aliases: []string{"o"},
					Usage:   "输出文件（默认标准输出）",
				},
				&cli.BoolFlag{
					Name:  "check",
					Usage: "仅检查输入是否包含占位符，输出 true/false",
				},
			},
		),
	}
}
