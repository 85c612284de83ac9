package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"splash-master/internal/app"
)

type selectOptions struct {
	targetOptions
}

func newSelectCommand() *cobra.Command {
	opts := selectOptions{}
	cmd := &cobra.Command{
		Use:   "select",
		Short: "List the spectra a selection picks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSelect(cmd.Context(), cmd, opts)
		},
	}
	addTargetFlags(cmd, &opts.targetOptions)
	return cmd
}

func runSelect(ctx context.Context, cmd *cobra.Command, opts selectOptions) error {
	service := newAppService()
	result, err := service.Select(ctx, app.SelectRequest{Targets: opts.request(cmd)})
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(result.Targets))
	for _, target := range result.Targets {
		rows = append(rows, []string{
			target.Key.Mask,
			target.Key.Slit,
			target.Key.Object,
			target.Field,
			string(target.FieldType),
		})
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderTable(
		[]string{"Mask", "Slit", "Object", "Field", "Type"},
		rows,
		nil,
	))
	fmt.Fprintf(out, "%d spectra selected\n", len(result.Targets))
	return nil
}
