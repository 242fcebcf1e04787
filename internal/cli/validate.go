package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/spf13/cobra"
)

// ValidateConfig captures the options for the validate command.
type ValidateConfig struct {
	Input   string
	Verbose bool
}

var validateRunner = runValidate

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate an OpenAPI document",
		Long:  "Validate an OpenAPI 3.0 document (JSON or YAML), such as one produced by the generate command.",
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := cmd.Flags().GetString("input")
			if err != nil {
				return err
			}
			verbose, err := cmd.Flags().GetBool("verbose")
			if err != nil {
				return err
			}
			cfg := &ValidateConfig{
				Input:   input,
				Verbose: verbose,
			}
			return validateRunner(cmd.Context(), cfg)
		},
	}

	cmd.Flags().String("input", "", "Path to the OpenAPI document to validate")

	return cmd
}

func runValidate(ctx context.Context, cfg *ValidateConfig) error {
	input := strings.TrimSpace(cfg.Input)
	if input == "" {
		return newUsageError("validate: --input is required")
	}

	data, err := os.ReadFile(input)
	if err != nil {
		return newUsageError(fmt.Sprintf("validate: read %s: %v", input, err))
	}

	if err := validateSpecData(ctx, data); err != nil {
		return fmt.Errorf("validate %s: %w", input, err)
	}

	fmt.Fprintln(os.Stdout, "OpenAPI document is valid.")
	return nil
}

// validateSpecData checks a rendered document against the OpenAPI 3.0 schema.
func validateSpecData(ctx context.Context, data []byte) error {
	if ctx == nil {
		ctx = context.Background()
	}
	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return fmt.Errorf("document is not valid OpenAPI 3.0: %w", err)
	}
	return nil
}
