package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sakif/insulog/internal/insulin"
	"github.com/sakif/insulog/internal/service"
)

type estimateOptions struct {
	carbs       float64
	sensitivity float64
	insulin     float64
	exercise    string
	format      string
}

// NewEstimateCommand creates the estimate command. It runs the dose
// calculator offline, without a server or database.
func NewEstimateCommand() *cobra.Command {
	opts := &estimateOptions{}

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate an insulin dose from carbohydrates",
		Example: `  insulog estimate --carbs 60 --sensitivity 10
  insulog estimate --carbs 60 --sensitivity 10 --insulin 8 --exercise Last6Hours --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.format != "text" && opts.format != "json" {
				return fmt.Errorf("invalid format %q: must be text or json", opts.format)
			}
			recency, err := insulin.ParseExerciseRecency(opts.exercise)
			if err != nil {
				return err
			}

			req := service.EstimateRequest{
				Carbs:       opts.carbs,
				Sensitivity: opts.sensitivity,
				Exercise:    recency,
			}
			if cmd.Flags().Changed("insulin") {
				req.Insulin = &opts.insulin
			}

			est, err := service.NewEstimator(nil).Estimate(req)
			if err != nil {
				return err
			}
			return writeEstimate(cmd.OutOrStdout(), opts.format, req, est)
		},
	}

	cmd.Flags().Float64Var(&opts.carbs, "carbs", 0, "grams of carbohydrate (required)")
	cmd.Flags().Float64Var(&opts.sensitivity, "sensitivity", 0, "grams covered by one unit of insulin (required)")
	cmd.Flags().Float64Var(&opts.insulin, "insulin", 0, "units actually given, to check for a mismatch")
	cmd.Flags().StringVar(&opts.exercise, "exercise", "", "exercise recency: None, Last6Hours, Last12Hours, Last24Hours")
	cmd.Flags().StringVar(&opts.format, "format", "text", "output format (json|text)")
	_ = cmd.MarkFlagRequired("carbs")
	_ = cmd.MarkFlagRequired("sensitivity")

	return cmd
}

func writeEstimate(w io.Writer, format string, req service.EstimateRequest, est *service.Estimate) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(est)
	}

	fmt.Fprintf(w, "estimated dose: %.4f U\n", est.EstimatedInsulin)
	if est.EstimatedWithExercise != nil {
		fmt.Fprintf(w, "with exercise (%s): %.2f U\n", req.Exercise, *est.EstimatedWithExercise)
	}
	if est.Mismatch != nil {
		verdict := "within tolerance"
		if *est.Mismatch {
			verdict = "MISMATCH"
		}
		fmt.Fprintf(w, "given %g U: %s\n", *req.Insulin, verdict)
	}
	return nil
}
