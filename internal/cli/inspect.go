package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"splash-master/internal/app"
)

type inspectOptions struct {
	Catalog string
	Limit   int
}

func newInspectCommand() *cobra.Command {
	opts := inspectOptions{}
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Summarize a master catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInspect(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Catalog, "catalog", "master.fits", "Catalog path")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "Rows to show, 0 for all")
	_ = viper.BindPFlag("catalog", cmd.Flags().Lookup("catalog"))
	_ = viper.BindPFlag("limit", cmd.Flags().Lookup("limit"))
	return cmd
}

func runInspect(cmd *cobra.Command, opts inspectOptions) error {
	service := newAppService()
	result, err := service.Inspect(app.InspectRequest{
		Catalog: resolveString(cmd, opts.Catalog, "catalog", "catalog"),
		Limit:   resolveInt(cmd, opts.Limit, "limit", "limit"),
	})
	if err != nil {
		return err
	}
	catalog := result.Catalog
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "catalog: %s (run %s)\n", catalog.Path, catalog.RunID)

	columns := make([][]string, 0, len(catalog.Columns))
	for _, name := range catalog.Columns {
		columns = append(columns, []string{name, string(catalog.Formats[name])})
	}
	fmt.Fprintln(out, renderTable([]string{"Column", "Format"}, columns, nil))

	headers := append([]string{"Target"}, catalog.Columns...)
	aligns := make([]columnAlignment, len(headers))
	rows := make([][]string, 0, len(catalog.Rows))
	for _, row := range catalog.Rows {
		cells := []string{row.Target}
		for i, name := range catalog.Columns {
			if catalog.Formats[name].IsArray() {
				cells = append(cells, strconv.Itoa(row.Samples[name]))
				aligns[i+1] = alignRight
				continue
			}
			cells = append(cells, row.Scalars[name])
			if !catalog.Formats[name].IsString() {
				aligns[i+1] = alignRight
			}
		}
		rows = append(rows, cells)
	}
	fmt.Fprintln(out, renderTable(headers, rows, aligns))
	fmt.Fprintf(out, "showing %d rows; array columns show finite sample counts\n", result.Shown)
	return nil
}
