package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/liftr/internal/export"
)

var (
	exportFormat string
	exportOut    string
	exportLimit  int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export finished workouts to CSV or JSON",
	Example: `  liftr export --format csv
  liftr export --format json --out workouts.json`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "csv", "Output format: csv or json")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (default: liftr-export-DATE.<format>)")
	exportCmd.Flags().IntVar(&exportLimit, "limit", 0, "Export only the most recent workouts (0 = all)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	write := export.ToCSV
	switch exportFormat {
	case "csv":
	case "json":
		write = export.ToJSON
	default:
		return fmt.Errorf("unknown format %q (want csv or json)", exportFormat)
	}

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	workouts, sets, err := export.Collect(e.store, exportLimit)
	if err != nil {
		return err
	}

	path := exportOut
	if path == "" {
		path = fmt.Sprintf("liftr-export-%s.%s", time.Now().Format("2006-01-02"), exportFormat)
	}
	if err := write(workouts, sets, path); err != nil {
		return err
	}

	abs, _ := filepath.Abs(path)
	e.log.Info().Str("path", abs).Int("workouts", len(workouts)).Msg("Exported workouts")
	fmt.Printf("Exported %d workouts to %s\n", len(workouts), abs)
	return nil
}
