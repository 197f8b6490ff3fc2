package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"

	"github.com/yurifrl/invex/pkg/config"
	"github.com/yurifrl/invex/pkg/csv"
	"github.com/yurifrl/invex/pkg/executors"
	"github.com/yurifrl/invex/pkg/models"
	"github.com/yurifrl/invex/pkg/output"
	"github.com/yurifrl/invex/pkg/parser"
	"github.com/yurifrl/invex/pkg/plan"
	"github.com/yurifrl/invex/pkg/service"
)

var (
	cliFilters filters
	cfgFile    string
)

var rootCmd = &cobra.Command{
	Use:   "invex-cli",
	Short: "Extract invoices from spreadsheets",
	RunE: func(cmd *cobra.Command, _ []string) error {
		// Show help when no subcommand is provided
		return cmd.Help()
	},
}

// setup loads configuration (config file + env + flag overrides) and builds
// the logger and processor every subcommand needs.
func setup(cmd *cobra.Command) (*config.Config, *log.Logger, *service.Processor, error) {
	cfg, err := config.Build(cfgFile, cmd.Flags())
	if err != nil {
		return nil, nil, nil, err
	}

	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = log.InfoLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "invex-cli",
		Level:           level,
	})

	processor, err := service.NewProcessor(cfg, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, logger, processor, nil
}

// inputFiles expands a glob into workbook paths; directories contribute their
// supported files.
func inputFiles(pattern string, logger *log.Logger) ([]string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no files found matching pattern %s", pattern)
	}

	var files []string
	for _, match := range matches {
		fileInfo, err := os.Stat(match)
		if err != nil {
			logger.Warn("failed to stat file", "error", err, "file", match)
			continue
		}
		if !fileInfo.IsDir() {
			files = append(files, match)
			continue
		}
		entries, err := os.ReadDir(match)
		if err != nil {
			logger.Warn("failed to read directory", "error", err, "dir", match)
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() && parser.Supported(entry.Name()) {
				files = append(files, filepath.Join(match, entry.Name()))
			}
		}
	}
	return files, nil
}

var convertCmd = &cobra.Command{
	Use:   "convert [flags] <input_path>",
	Short: "Convert invoice workbooks to Header/Items tables",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, logger, processor, err := setup(cmd)
		if err != nil {
			return err
		}

		files, err := inputFiles(args[0], logger)
		if err != nil {
			return err
		}

		var invoices []models.Invoice
		for _, file := range files {
			found, err := processor.ProcessFile(file)
			if err != nil {
				logger.Warn("failed to process file", "error", err, "file", file)
				continue
			}
			invoices = append(invoices, found...)
		}

		formatter := processor.Formatter()
		invoices = cliFilters.apply(invoices, formatter)

		outFile, _ := cmd.Flags().GetString("out")
		if outFile != "" {
			if err := processor.WriteFile(outFile, invoices); err != nil {
				return err
			}
			logger.Info("wrote workbook", "output", outFile, "invoices", len(invoices))
			return nil
		}

		headers, items := formatter.Rows(invoices)
		table, _ := cmd.Flags().GetString("table")
		switch table {
		case "header":
			fmt.Print(string(csv.Create(output.HeaderColumns, headers, nil)))
		case "items":
			fmt.Print(string(csv.Create(output.ItemColumns, items, nil)))
		default:
			return fmt.Errorf("unknown table %q (want header or items)", table)
		}
		return nil
	},
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Pretty-print the invoices extracted from a workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, logger, processor, err := setup(cmd)
		if err != nil {
			return err
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		sheets, err := parser.New(logger).ProcessBytes(data, filepath.Base(args[0]))
		if err != nil {
			return err
		}

		res := processor.Process(sheets)
		pp.Println(res.Invoices)
		for _, skipped := range res.Skipped {
			fmt.Fprintf(os.Stderr, "skipped %s\n", skipped)
		}

		trace, _ := cmd.Flags().GetBool("trace")
		if !trace {
			return nil
		}
		for _, sheet := range sheets {
			fmt.Printf("== %s\n", sheet.Name)
			pp.Println(processor.Locator().Trace(sheet.Grid))
		}
		return nil
	},
}

func loadPlan(cmd *cobra.Command, path string) (*plan.Plan, *executors.Executor, error) {
	_, logger, processor, err := setup(cmd)
	if err != nil {
		return nil, nil, err
	}
	p, err := plan.Load(path)
	if err != nil {
		return nil, nil, err
	}
	return p, executors.New(logger, processor), nil
}

var planCmd = &cobra.Command{
	Use:   "plan <plan_file>",
	Short: "Preview a YAML plan of workbooks (dry-run)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, exec, err := loadPlan(cmd, args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Plan preview for %s\n", args[0])
		p.Print()
		return exec.Plan(p)
	},
}

var applyCmd = &cobra.Command{
	Use:   "apply <plan_file>",
	Short: "Convert every workbook of a YAML plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, exec, err := loadPlan(cmd, args[0])
		if err != nil {
			return err
		}
		return exec.Apply(p)
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Config file (default is config.yaml)")
	rootCmd.PersistentFlags().String("currency", "", "Default currency code")
	rootCmd.PersistentFlags().String("default-date", "", "Date used when a sheet has none")
	rootCmd.PersistentFlags().String("date-policy", "", "Default date policy (fixed or run_date)")
	rootCmd.PersistentFlags().String("normalize", "", "Arabic repair mode (off, fallback, always)")
	rootCmd.PersistentFlags().Bool("no-placeholders", false, "Drop weight and package rows")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")

	// Filter flags (global)
	rootCmd.PersistentFlags().StringVar(&cliFilters.currency, "only-currency", "", "Keep invoices in this currency")
	rootCmd.PersistentFlags().StringVar(&cliFilters.customer, "customer", "", "Keep invoices of this customer code")
	rootCmd.PersistentFlags().Float64Var(&cliFilters.minTotal, "min", 0, "Minimum total amount")
	rootCmd.PersistentFlags().Float64Var(&cliFilters.maxTotal, "max", 0, "Maximum total amount")
	rootCmd.PersistentFlags().BoolVar(&cliFilters.completeOnly, "complete", false, "Keep only invoices with a number and items")

	// Flags specific to the convert subcommand
	convertCmd.Flags().StringP("out", "o", "", "Write an xlsx workbook instead of printing CSV")
	convertCmd.Flags().String("table", "header", "Table printed as CSV (header or items)")

	inspectCmd.Flags().Bool("trace", false, "Show where each header field was found")

	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(applyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
