package sqlcmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v3"
	yamlv3 "go.yaml.in/yaml/v3"

	"github.com/lwmacct/251019-go-pkg-tokparse/internal/command"
	"github.com/lwmacct/251019-go-pkg-tokparse/pkg/sqlparam"
)

func action(_ context.Context, cmd *cli.Command) error {
	style, err := sqlparam.ParseStyle(cmd.String("style"))
	if err != nil {
		return err
	}

	input, err := command.ReadInput(cmd)
	if err != nil {
		return err
	}

	stmt, err := sqlparam.Compile(input, style)
	if err != nil {
		return err
	}

	out, err := Render(stmt, cmd.String("format"))
	if err != nil {
		return err
	}

	return command.WriteOutput(cmd, cmd.String("output"), out)
}

// Render 按格式输出编译结果。
func Render(stmt *sqlparam.Statement, format string) ([]byte, error) {
	switch format {
	case "", "json":
		out, err := json.MarshalIndent(stmt, "", "  ")
		if err != nil {
			return nil, err
		}

		return append(out, '\n'), nil
	case "yaml":
		return yamlv3.Marshal(stmt)
	case "sql":
		return []byte(stmt.SQL), nil
	}

	return nil, fmt.Errorf("unknown format %q", format)
}
