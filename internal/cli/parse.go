package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/shaiso/Importer/internal/domain"
	"github.com/shaiso/Importer/internal/fetcher"
	"github.com/shaiso/Importer/internal/importer"
	"github.com/shaiso/Importer/internal/tree"
	"github.com/shaiso/Importer/internal/workbook"
)

// Defaults — значения флагов по умолчанию (обычно из config).
type Defaults struct {
	APIURL  string
	Sheet   string
	Timeout time.Duration
}

// NewParseCmd создаёт команду parse.
func NewParseCmd(defaults Defaults, outputFn func() *Output) *cobra.Command {
	var sheet string
	var listSheets bool

	cmd := &cobra.Command{
		Use:   "parse PATH",
		Short: "Build the category tree from a local workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			wb, err := workbook.Open(data)
			if err != nil {
				return err
			}
			defer wb.Close()

			if listSheets {
				names := wb.SheetNames()
				rows := make([][]string, len(names))
				for i, n := range names {
					rows[i] = []string{n}
				}
				out.Print([]string{"SHEET"}, rows, names)
				return nil
			}

			rows, err := wb.Worksheet(sheet)
			if err != nil {
				return err
			}
			defer rows.Close()

			forest, err := tree.BuildRows(rows)
			if err != nil {
				return err
			}

			printSummary(out, forest)
			return nil
		},
	}

	cmd.Flags().StringVar(&sheet, "sheet", defaults.Sheet, "Worksheet with categories")
	cmd.Flags().BoolVar(&listSheets, "list-sheets", false, "List worksheets and exit")

	return cmd
}

// NewFetchCmd создаёт команду fetch.
func NewFetchCmd(defaults Defaults, outputFn func() *Output) *cobra.Command {
	var apiURL string
	var sheet string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "fetch FILENAME",
		Short: "Download a file from the file service and build its category tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			imp := importer.New(importer.Config{
				Fetcher: fetcher.New(fetcher.Config{BaseURL: apiURL, Timeout: timeout}),
				Sheet:   sheet,
			})

			forest, err := imp.Run(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			printSummary(out, forest)
			return nil
		},
	}

	cmd.Flags().StringVar(&apiURL, "api-url", defaults.APIURL, "File service URL")
	cmd.Flags().StringVar(&sheet, "sheet", defaults.Sheet, "Worksheet with categories")
	cmd.Flags().DurationVar(&timeout, "timeout", defaults.Timeout, "Download timeout")

	return cmd
}

func printSummary(out *Output, forest domain.Forest) {
	out.Forest(forest)
	out.Success(fmt.Sprintf("%d categories, %d roots, depth %d",
		forest.Len(), len(forest.Roots()), forest.MaxLevel()))
}
