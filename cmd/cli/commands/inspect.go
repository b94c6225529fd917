package commands

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/gmolate/anonimizarpy/internal/dataset"
	"github.com/gmolate/anonimizarpy/internal/pipeline"
	"github.com/gmolate/anonimizarpy/pkg/constants"
	"github.com/gmolate/anonimizarpy/pkg/models"
)

type InspectOptions struct {
	InputFile          string
	QuasiIdentifiers   []string
	SensitiveAttribute string
	MinK               int
	MinL               int
}

func NewInspectCmd() *cobra.Command {
	opts := &InspectOptions{}

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Report the k/l state of a dataset without modifying it",
		Example: `  anonimizar inspect --input anon.csv \
    --quasi-identifiers comuna,sexo,tramo_edad --sensitive diagnostico`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.InputFile, "input", "i", "", "Input CSV file (required)")
	cmd.Flags().StringSliceVar(&opts.QuasiIdentifiers, "quasi-identifiers", nil, "Quasi-identifier columns (required)")
	cmd.Flags().StringVar(&opts.SensitiveAttribute, "sensitive", "", "Sensitive attribute column (required)")
	cmd.Flags().IntVarP(&opts.MinK, "min-k", "k", constants.DefaultMinK, "Minimum group size")
	cmd.Flags().IntVarP(&opts.MinL, "min-l", "l", constants.DefaultMinL, "Minimum distinct sensitive values per group")

	cmd.MarkFlagRequired("input")
	cmd.MarkFlagRequired("quasi-identifiers")
	cmd.MarkFlagRequired("sensitive")

	return cmd
}

func runInspect(opts *InspectOptions) error {
	logger := logrus.New()

	ds, err := dataset.ReadFile(opts.InputFile, dataset.DefaultCSVOptions(), logger)
	if err != nil {
		return err
	}

	p := pipeline.New(&pipeline.Config{
		Roles: models.FieldRoles{
			QuasiIdentifiers:   opts.QuasiIdentifiers,
			SensitiveAttribute: opts.SensitiveAttribute,
		},
		Threshold: models.Threshold{MinK: opts.MinK, MinL: opts.MinL},
	}, logger, nil)

	result, err := p.Inspect(context.Background(), ds)
	if err != nil {
		return err
	}

	fmt.Println("Group statistics:")
	fmt.Printf("- Records: %d\n", result.Records)
	fmt.Printf("- Groups: %d\n", result.Groups)
	fmt.Printf("- Smallest group (k): %d\n", result.MinK)
	fmt.Printf("- Lowest diversity (l): %d\n", result.MinL)
	fmt.Printf("- Records below threshold: %d\n", result.FailingRecords)

	return nil
}
