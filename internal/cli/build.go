package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"splash-master/internal/app"
	"splash-master/internal/core"
)

type buildOptions struct {
	runOptions
	Workers int
	SkipLog string
	Output  string
	Summary string
}

func newBuildCommand() *cobra.Command {
	opts := buildOptions{}
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Rebin selected spectra to the rest frame and write the master catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBuild(cmd.Context(), cmd, opts)
		},
	}
	addRunFlags(cmd, &opts.runOptions)
	cmd.Flags().IntVar(&opts.Workers, "workers", core.DefaultWorkers, "Concurrent spectrum readers")
	cmd.Flags().StringVar(&opts.SkipLog, "skip-log", app.DefaultSkipLog, "Diagnostic log of skipped spectra (appended)")
	cmd.Flags().StringVar(&opts.Output, "output", "master.fits", "Catalog output path")
	cmd.Flags().StringVar(&opts.Summary, "summary", "", "Optional run summary yaml path")

	_ = viper.BindPFlag("workers", cmd.Flags().Lookup("workers"))
	_ = viper.BindPFlag("skip_log", cmd.Flags().Lookup("skip-log"))
	_ = viper.BindPFlag("output", cmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("summary", cmd.Flags().Lookup("summary"))
	return cmd
}

func runBuild(ctx context.Context, cmd *cobra.Command, opts buildOptions) error {
	service := newAppService()
	result, err := service.Build(ctx, app.BuildRequest{
		Targets:      opts.request(cmd),
		Grid:         opts.grid(cmd),
		ZspecPath:    resolveString(cmd, opts.ZspecPath, "zspec_path", "zspec-path"),
		SerendipFile: resolveString(cmd, opts.SerendipFile, "serendip_file", "serendip-file"),
		Tags:         resolveStrings(cmd, opts.Tags, "tags", "tag"),
		TagSchemas:   resolveStrings(cmd, opts.TagSchemas, "tag_schema", "tag-schema"),
		Workers:      resolveInt(cmd, opts.Workers, "workers", "workers"),
		SkipLog:      resolveString(cmd, opts.SkipLog, "skip_log", "skip-log"),
		Output:       resolveString(cmd, opts.Output, "output", "output"),
		Summary:      resolveString(cmd, opts.Summary, "summary", "summary"),
	})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	summary := result.Summary
	fmt.Fprintf(out, "catalog: %s (run %s)\n", result.Catalog, result.RunID)
	fmt.Fprintf(out, "targets: %d, rebinned: %d, redshifts matched: %d, serendips: %d, unmatched: %d\n",
		summary.Targets, summary.Rebinned, summary.Matched, summary.Serendips, summary.Unmatched)
	reasons := make([]string, 0, len(summary.Skipped))
	for reason := range summary.Skipped {
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)
	for _, reason := range reasons {
		fmt.Fprintf(out, "- skipped %s: %d\n", reason, summary.Skipped[reason])
	}
	return nil
}
