package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/mark3labs/capture2openapi/internal/capture"
	"github.com/mark3labs/capture2openapi/internal/emitter"
	"github.com/mark3labs/capture2openapi/internal/openapi"
)

// GenerateConfig captures all inputs that influence the generate command after
// merging defaults, environment values, config file values, and CLI overrides.
type GenerateConfig struct {
	Input      string
	Out        string
	Format     string
	Title      string
	APIVersion string
	Validate   bool
	ConfigPath string
	DryRun     bool
	Force      bool
	Verbose    bool
}

func defaultGenerateConfig() GenerateConfig {
	return GenerateConfig{
		Title:      openapi.DefaultTitle,
		APIVersion: openapi.DefaultVersion,
	}
}

// generateEnv mirrors the config fields that may be supplied through the
// environment, below config files and flags in precedence.
type generateEnv struct {
	Title      string `env:"CAPTURE2OPENAPI_TITLE"`
	APIVersion string `env:"CAPTURE2OPENAPI_API_VERSION"`
	Format     string `env:"CAPTURE2OPENAPI_FORMAT"`
	Out        string `env:"CAPTURE2OPENAPI_OUT"`
}

var generateRunner = runGenerate

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate an OpenAPI document from a capture file",
		Long: "Generate an OpenAPI 3.0 document from a JSON array of captured network exchanges. " +
			"Options can be provided via flags, config files, environment variables, or defaults.",
		Example: strings.TrimSpace(`  capture2openapi generate --input requests.json --out api.yaml
  capture2openapi --config config.yaml generate --force --dry-run`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveGenerateConfig(cmd)
			if err != nil {
				return err
			}
			return generateRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("input", "", "Path to the captured network requests (JSON array)")
	flags.String("out", "", "Output file (.json, .yaml, .yml); prints JSON to stdout when omitted")
	flags.String("format", "", "Output format (json|yaml); derived from --out extension when omitted")
	flags.String("title", "", "Title for the generated document")
	flags.String("api-version", "", "Version string for the generated document's info block")
	flags.Bool("validate", false, "Validate the generated document against the OpenAPI 3.0 schema")
	flags.Bool("dry-run", false, "Preview the planned output without writing files")
	flags.Bool("force", false, "Overwrite existing output when set")

	return cmd
}

func resolveGenerateConfig(cmd *cobra.Command) (*GenerateConfig, error) {
	cfg := defaultGenerateConfig()

	if err := applyGenerateEnv(cmd.Context(), &cfg); err != nil {
		return nil, err
	}

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	configPath = strings.TrimSpace(configPath)
	if configPath != "" {
		cfg.ConfigPath = configPath
		if err := applyGenerateConfigFromFile(&cfg, configPath); err != nil {
			return nil, err
		}
	}

	if err := applyGenerateFlagOverrides(cmd.Flags(), &cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyGenerateEnv(ctx context.Context, cfg *GenerateConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}
	var env generateEnv
	if err := envconfig.Process(ctx, &env); err != nil {
		return fmt.Errorf("process environment config: %w", err)
	}
	if v := strings.TrimSpace(env.Title); v != "" {
		cfg.Title = v
	}
	if v := strings.TrimSpace(env.APIVersion); v != "" {
		cfg.APIVersion = v
	}
	if v := strings.TrimSpace(env.Format); v != "" {
		cfg.Format = v
	}
	if v := strings.TrimSpace(env.Out); v != "" {
		cfg.Out = v
	}
	return nil
}

func applyGenerateFlagOverrides(flags *pflag.FlagSet, cfg *GenerateConfig) error {
	if flags.Changed("input") {
		value, err := flags.GetString("input")
		if err != nil {
			return err
		}
		cfg.Input = strings.TrimSpace(value)
	}
	if flags.Changed("out") {
		value, err := flags.GetString("out")
		if err != nil {
			return err
		}
		cfg.Out = strings.TrimSpace(value)
	}
	if flags.Changed("format") {
		value, err := flags.GetString("format")
		if err != nil {
			return err
		}
		cfg.Format = strings.TrimSpace(value)
	}
	if flags.Changed("title") {
		value, err := flags.GetString("title")
		if err != nil {
			return err
		}
		cfg.Title = strings.TrimSpace(value)
	}
	if flags.Changed("api-version") {
		value, err := flags.GetString("api-version")
		if err != nil {
			return err
		}
		cfg.APIVersion = strings.TrimSpace(value)
	}
	if flags.Changed("validate") {
		value, err := flags.GetBool("validate")
		if err != nil {
			return err
		}
		cfg.Validate = value
	}
	if flags.Changed("dry-run") {
		value, err := flags.GetBool("dry-run")
		if err != nil {
			return err
		}
		cfg.DryRun = value
	}
	if flags.Changed("force") {
		value, err := flags.GetBool("force")
		if err != nil {
			return err
		}
		cfg.Force = value
	}
	if flags.Changed("verbose") {
		value, err := flags.GetBool("verbose")
		if err != nil {
			return err
		}
		cfg.Verbose = value
	}

	return nil
}

func (c *GenerateConfig) normalize() {
	c.Input = strings.TrimSpace(c.Input)
	c.Out = strings.TrimSpace(c.Out)
	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	c.Title = strings.TrimSpace(c.Title)
	c.APIVersion = strings.TrimSpace(c.APIVersion)
}

func (c *GenerateConfig) validate() error {
	if c.Input == "" {
		return newUsageError("generate: --input is required (set via flag or config file)")
	}
	if _, err := emitter.ParseFormat(c.Format); err != nil {
		return newUsageError(fmt.Sprintf("generate: %v", err))
	}
	return nil
}

func runGenerate(ctx context.Context, cfg *GenerateConfig) error {
	// 1) Load the capture records; a malformed capture aborts before any output.
	exchanges, err := capture.Load(cfg.Input)
	if err != nil {
		var ce *capture.CaptureError
		if errors.As(err, &ce) {
			return newUsageError(ce.Message)
		}
		return err
	}

	// 2) Fold the exchanges into a document.
	doc := openapi.Aggregate(exchanges, openapi.Options{
		Title:   cfg.Title,
		Version: cfg.APIVersion,
	})

	// 3) Render and write.
	format, err := emitter.ParseFormat(cfg.Format)
	if err != nil {
		return newUsageError(fmt.Sprintf("generate: %v", err))
	}
	res, err := emitter.Emit(doc, emitter.Options{
		OutPath: cfg.Out,
		Format:  format,
		Force:   cfg.Force,
		DryRun:  cfg.DryRun,
	})
	if err != nil {
		return wrapOutputError(err, cfg.Out)
	}

	// 4) Optionally check the result against the OpenAPI 3.0 schema.
	if cfg.Validate {
		rendered, merr := json.Marshal(doc)
		if merr != nil {
			return fmt.Errorf("render document for validation: %w", merr)
		}
		if verr := validateSpecData(ctx, rendered); verr != nil {
			return fmt.Errorf("generated document failed validation: %w", verr)
		}
	}

	switch {
	case res.Path == "":
		// Document already went to stdout; nothing further to report.
	case cfg.DryRun:
		fmt.Fprintf(os.Stdout, "Planned write to %s (%s, %d bytes)\n", displayPath(res.Path), res.Format, res.Size)
	default:
		fmt.Fprintf(os.Stdout, "OpenAPI spec written to %s (%s)\n", displayPath(res.Path), res.Format)
	}
	if res.FellBack {
		fmt.Fprintln(os.Stderr, "Warning: YAML output unavailable, wrote JSON instead")
	}
	return nil
}

func displayPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

func wrapOutputError(err error, outPath string) error {
	// Provide clearer guidance for common FS failures.
	msg := err.Error()
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "permission") || strings.Contains(lower, "read-only") || strings.Contains(lower, "mkdir") || strings.Contains(lower, "rename") || strings.Contains(lower, "already exists") {
		return newUsageError(fmt.Sprintf("output error for %s: %s\nHint: choose a different --out or use --force when appropriate.", displayPath(outPath), msg))
	}
	return err
}

func applyGenerateConfigFromFile(cfg *GenerateConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return newUsageError(fmt.Sprintf("read config file %q: %v", path, err))
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return newUsageError(fmt.Sprintf("parse config file %q: %v", path, err))
	}

	for key, value := range raw {
		normalized := normalizeKey(key)
		switch normalized {
		case "input":
			str, err := valueAsString(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Input = str
		case "out":
			str, err := valueAsString(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Out = str
		case "format":
			str, err := valueAsString(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Format = str
		case "title":
			str, err := valueAsString(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			if str != "" {
				cfg.Title = str
			}
		case "apiversion":
			str, err := valueAsString(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			if str != "" {
				cfg.APIVersion = str
			}
		case "validate":
			val, err := valueAsBool(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Validate = val
		case "dryrun":
			val, err := valueAsBool(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.DryRun = val
		case "force":
			val, err := valueAsBool(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Force = val
		case "verbose":
			val, err := valueAsBool(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Verbose = val
		default:
			return newUsageError(fmt.Sprintf("config file %q: unknown field %q", path, key))
		}
	}

	return nil
}

func normalizeKey(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	lowered = strings.ReplaceAll(lowered, "-", "")
	lowered = strings.ReplaceAll(lowered, "_", "")
	return lowered
}

func valueAsString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

func valueAsBool(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		trimmed := strings.ToLower(strings.TrimSpace(val))
		switch trimmed {
		case "true", "t", "1", "yes", "y":
			return true, nil
		case "false", "f", "0", "no", "n":
			return false, nil
		case "":
			return false, nil
		default:
			return false, fmt.Errorf("invalid boolean value %q", val)
		}
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("expected boolean, got %T", v)
	}
}
