// Importer CLI — постановка импортов в очередь и локальная проверка документов.
//
// Использование:
//
//	importer [--json] <command> [flags]
//
// Команды:
//
//	enqueue   Поставить импорт файлов в очередь
//	parse     Разобрать локальный xlsx
//	fetch     Скачать файл из файлового сервиса и разобрать
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaiso/Importer/internal/cli"
	"github.com/shaiso/Importer/internal/config"
	"github.com/shaiso/Importer/internal/mq"
	"github.com/shaiso/Importer/internal/telemetry"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	var jsonOutput bool
	var verbose bool

	rootCmd := &cobra.Command{
		Use:           "importer",
		Short:         "Importer CLI — category tree import from xlsx",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			// логи CLI — только в stderr и только по запросу
			level := "error"
			if verbose {
				level = "debug"
			}
			slog.SetDefault(telemetry.NewLogger(os.Stderr, level, "text"))
		},
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging to stderr")

	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }

	dial := func() (cli.Enqueuer, func() error, error) {
		conn, err := mq.NewConnection(mq.ConnectionConfig{
			URL:       cfg.AMQP.Addr,
			Heartbeat: cfg.AMQP.Heartbeat,
			Logger:    slog.Default(),
		})
		if err != nil {
			return nil, nil, err
		}
		if err := mq.SetupTopology(context.Background(), conn); err != nil {
			conn.Close()
			return nil, nil, err
		}
		return mq.NewPublisher(conn, slog.Default()), conn.Close, nil
	}

	defaults := cli.Defaults{
		APIURL:  cfg.API.Addr,
		Sheet:   cfg.Import.Sheet,
		Timeout: cfg.API.Timeout,
	}

	rootCmd.AddCommand(
		cli.NewEnqueueCmd(dial, outputFn),
		cli.NewParseCmd(defaults, outputFn),
		cli.NewFetchCmd(defaults, outputFn),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
