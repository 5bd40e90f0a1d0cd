// Package command 提供各子命令共享的配置加载与输入输出功能。
package command

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/urfave/cli/v3"

	"github.com/lwmacct/251019-go-pkg-tokparse/internal/config"
	"github.com/lwmacct/251019-go-pkg-tokparse/internal/varsource"
	"github.com/lwmacct/251019-go-pkg-tokparse/pkg/cfgm"
	"github.com/lwmacct/251019-go-pkg-tokparse/pkg/templexp"
)

// Defaults 为默认配置的单一来源。
var Defaults = config.DefaultConfig()

// GlobalFlags 根命令 flags，对所有子命令可见。
func GlobalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "配置文件路径（默认搜索 .tokparse.yaml 等）",
		},
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "输出调试日志",
		},
	}
}

// SetupLogging 根据 --debug 设置 slog 级别，用作根命令的 Before。
func SetupLogging(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("debug") {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	return ctx, nil
}

// ParserFlags 返回占位符展开相关 flags。
//
// flag 名称与配置 key 一一对应（parser.open → --parser-open），由 cfgm 写回配置。
func ParserFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "parser-open",
			Value: Defaults.Parser.Open,
			Usage: "开始定界符",
		},
		&cli.StringFlag{
			Name:  "parser-close",
			Value: Defaults.Parser.Close,
			Usage: "结束定界符",
		},
		&cli.BoolFlag{
			Name:  "parser-strict",
			Value: Defaults.Parser.Strict,
			Usage: "未设置的变量视为错误",
		},
		&cli.BoolFlag{
			Name:  "parser-use-env",
			Value: Defaults.Parser.UseEnv,
			Usage: "读取进程环境变量",
		},
		&cli.StringSliceFlag{
			Name:  "parser-env-files",
			Usage: "变量来源 .env 文件（可重复）",
		},
	}
}

// VarFlags 返回变量来源 flags。
func VarFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:  "var",
			Usage: "变量 key=value（可重复，优先级最高）",
		},
		&cli.StringSliceFlag{
			Name:  "vars-file",
			Usage: "YAML/JSON 变量文件（可重复）",
		},
	}
}

// LoadConfig 加载配置：默认值 → 配置文件 → 环境变量 → CLI flags。
//
// 相对路径基于当前工作目录；当前目录的 .env 提供配置模板变量。
func LoadConfig(cmd *cli.Command) (*config.Config, error) {
	opts := []cfgm.Option{
		cfgm.WithBaseDir(""),
		cfgm.WithEnvPrefix(config.EnvPrefix),
		cfgm.WithEnvFiles(".env"),
	}
	if path := cmd.String("config"); path != "" {
		opts = append(opts, cfgm.WithConfigPaths(path))
	}

	cfg, err := cfgm.LoadCmd(cmd, config.DefaultConfig(), config.AppName, opts...)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return cfg, nil
}

// Sources 从 --var / --vars-file 读取变量来源。
func Sources(cmd *cli.Command) varsource.Sources {
	return varsource.Sources{
		VarsFiles: cmd.StringSlice("vars-file"),
		Pairs:     cmd.StringSlice("var"),
	}
}

// NewExpander 按配置创建展开器。
//
// 变量优先级 (从低到高)：进程环境变量 → parser.env-files → src。
func NewExpander(p config.ParserConfig, src varsource.Sources) (*templexp.Expander, error) {
	src.EnvFiles = append(slices.Clone(p.EnvFiles), src.EnvFiles...)
	vars, err := varsource.Load(src)
	if err != nil {
		return nil, err
	}

	opts := []templexp.Option{
		templexp.WithDelimiters(p.Open, p.Close),
		templexp.WithVars(vars),
	}
	if !p.UseEnv {
		opts = append(opts, templexp.WithoutEnv())
	}
	if p.Strict {
		opts = append(opts, templexp.WithStrict())
	}

	return templexp.New(opts...)
}

// ReadInput 读取第一个参数指定的文件；未指定或为 "-" 时读取标准输入。
func ReadInput(cmd *cli.Command) (string, error) {
	path := cmd.Args().First()
	if path == "" || path == "-" {
		data, err := io.ReadAll(cmd.Root().Reader)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}

		return string(data), nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // path is provided by the user
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}

	return string(data), nil
}

// WriteOutput 写入 path；path 为空时写入标准输出。
func WriteOutput(cmd *cli.Command, path string, data []byte) error {
	if path == "" {
		_, err := cmd.Root().Writer.Write(data)
		return err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // output file is meant to be readable
		return fmt.Errorf("write output: %w", err)
	}

	return nil
}
