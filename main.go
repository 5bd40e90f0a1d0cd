package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/lwmacct/251019-go-pkg-tokparse/internal/command"
	"github.com/lwmacct/251019-go-pkg-tokparse/internal/command/client"
	"github.com/lwmacct/251019-go-pkg-tokparse/internal/command/expand"
	"github.com/lwmacct/251019-go-pkg-tokparse/internal/command/server"
	"github.com/lwmacct/251019-go-pkg-tokparse/internal/command/sqlcmd"
	"github.com/lwmacct/251019-go-pkg-tokparse/internal/version"
)

func main() {
	app := &cli.Command{
		Name:    version.AppRawName,
		Usage:   "定界符占位符展开工具",
		Version: version.GetVersion(),
		Flags:   command.GlobalFlags(),
		Before:  command.SetupLogging,
		Commands: []*cli.Command{
			version.Command,
			expand.Command,
			sqlcmd.Command,
			client.Command,
			server.Command,
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
