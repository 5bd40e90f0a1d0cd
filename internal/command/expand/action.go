package expand

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/lwmacct/251019-go-pkg-tokparse/internal/command"
)

func action(ctx context.Context, cmd *cli.Command) error {
	// 加载配置：默认值 → 配置文件 → 环境变量 → CLI flags
	cfg, err := command.LoadConfig(cmd)
	if err != nil {
		return err
	}

	input, err := command.ReadInput(cmd)
	if err != nil {
		return err
	}

	expander, err := command.NewExpander(cfg.Parser, command.Sources(cmd))
	if err != nil {
		return err
	}

	if cmd.Bool("check") {
		return command.WriteOutput(cmd, "", []byte(strconv.FormatBool(expander.IsDynamic(input))+"\n"))
	}

	out, err := expander.Expand(input)
	if err != nil {
		return fmt.Errorf("expand: %w", err)
	}
	slog.DebugContext(ctx, "Expanded input", "open", cfg.Parser.Open, "close", cfg.Parser.Close, "bytesIn", len(input), "bytesOut", len(out))

	return command.WriteOutput(cmd, cmd.String("output"), []byte(out))
}
