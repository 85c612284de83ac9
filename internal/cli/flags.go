package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"splash-master/internal/app"
	"splash-master/internal/types"
)

// targetOptions are the flags every command that selects spectra takes.
type targetOptions struct {
	Spec1DPath     string
	Selection      string
	Selectors      []string
	SubstructMasks []string
}

func addTargetFlags(cmd *cobra.Command, opts *targetOptions) {
	cmd.Flags().StringVar(&opts.Spec1DPath, "spec1d-path", ".", "Directory holding spec1d files")
	cmd.Flags().StringVar(&opts.Selection, "selection", string(types.SelectionAll), "Selection mode: all, masks, fields or fieldtype")
	cmd.Flags().StringSliceVar(&opts.Selectors, "selector", nil, "Masks, fields or field types to keep")
	cmd.Flags().StringSliceVar(&opts.SubstructMasks, "substruct-mask", nil, "Extra masks classified as halo substructure")
	_ = viper.BindPFlag("spec1d_path", cmd.Flags().Lookup("spec1d-path"))
	_ = viper.BindPFlag("selection", cmd.Flags().Lookup("selection"))
	_ = viper.BindPFlag("selectors", cmd.Flags().Lookup("selector"))
	_ = viper.BindPFlag("substruct_masks", cmd.Flags().Lookup("substruct-mask"))
}

func (o targetOptions) request(cmd *cobra.Command) app.TargetRequest {
	return app.TargetRequest{
		Spec1DPath:     resolveString(cmd, o.Spec1DPath, "spec1d_path", "spec1d-path"),
		Selection:      types.SelectionMode(resolveString(cmd, o.Selection, "selection", "selection")),
		Selectors:      resolveStrings(cmd, o.Selectors, "selectors", "selector"),
		SubstructMasks: resolveStrings(cmd, o.SubstructMasks, "substruct_masks", "substruct-mask"),
	}
}

// runOptions are the flags shared by validate and build.
type runOptions struct {
	targetOptions
	ZspecPath    string
	SerendipFile string
	Tags         []string
	TagSchemas   []string
	LambdaMin    float64
	LambdaMax    float64
	LambdaStep   float64
}

func addRunFlags(cmd *cobra.Command, opts *runOptions) {
	addTargetFlags(cmd, &opts.targetOptions)
	cmd.Flags().StringVar(&opts.ZspecPath, "zspec-path", ".", "Directory holding zspec.<mask>.fits files")
	cmd.Flags().StringVar(&opts.SerendipFile, "serendip-file", "", "Serendip table path, or \"default\" for SLIT.goodFormat in the zspec path")
	cmd.Flags().StringSliceVar(&opts.Tags, "tag", nil, "Output columns (default LBIN,SPEC,IVAR,RA,DEC)")
	cmd.Flags().StringSliceVar(&opts.TagSchemas, "tag-schema", nil, "Tag vocabulary yaml layers")
	cmd.Flags().Float64Var(&opts.LambdaMin, "lambda-min", app.DefaultLambdaMin, "Rest-frame grid start [Angstrom]")
	cmd.Flags().Float64Var(&opts.LambdaMax, "lambda-max", app.DefaultLambdaMax, "Rest-frame grid end [Angstrom]")
	cmd.Flags().Float64Var(&opts.LambdaStep, "lambda-step", app.DefaultLambdaStep, "Rest-frame grid step [Angstrom]")
	_ = viper.BindPFlag("zspec_path", cmd.Flags().Lookup("zspec-path"))
	_ = viper.BindPFlag("serendip_file", cmd.Flags().Lookup("serendip-file"))
	_ = viper.BindPFlag("tags", cmd.Flags().Lookup("tag"))
	_ = viper.BindPFlag("tag_schema", cmd.Flags().Lookup("tag-schema"))
	_ = viper.BindPFlag("lambda_min", cmd.Flags().Lookup("lambda-min"))
	_ = viper.BindPFlag("lambda_max", cmd.Flags().Lookup("lambda-max"))
	_ = viper.BindPFlag("lambda_step", cmd.Flags().Lookup("lambda-step"))
}

func (o runOptions) grid(cmd *cobra.Command) app.GridRequest {
	return app.GridRequest{
		LambdaMin:  resolveFloat(cmd, o.LambdaMin, "lambda_min", "lambda-min"),
		LambdaMax:  resolveFloat(cmd, o.LambdaMax, "lambda_max", "lambda-max"),
		LambdaStep: resolveFloat(cmd, o.LambdaStep, "lambda_step", "lambda-step"),
	}
}
