package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/leadharvest/leadharvest-cli/internal/export"
	"github.com/leadharvest/leadharvest-cli/internal/model"
)

var (
	runAllDataType   string
	runAllMaxResults int
	runAllFormat     string
	runAllOut        string
)

var runAllCmd = &cobra.Command{
	Use:   "run-all <query>",
	Short: "Run every source sequentially and merge the results",
	Long:  "Runs websearch, pronet, and mapsearch in order with a pause between them, merges all leads across sources, and exports the combined set. One source failing does not abort the others.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext(cmd)
		defer stop()

		formatName := runAllFormat
		if formatName == "" {
			formatName = cfg.Export.Format
		}
		format, err := export.ParseFormat(formatName)
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		q := model.ParseQuery(args[0])
		opts := newRunOptions(runAllDataType, runAllMaxResults)

		run, err := st.CreateRun(ctx, q, model.SourceCombined, opts)
		if err != nil {
			return err
		}
		_ = st.UpdateRunStatus(ctx, run.ID, model.RunStatusRunningSource)

		zap.L().Info("run-all: starting",
			zap.String("run_id", run.ID),
			zap.String("query", q.Raw),
			zap.String("data_type", runAllDataType),
		)

		res, err := buildOrchestrator().RunCombined(ctx, q, opts)
		if err != nil {
			failRun(ctx, st, run.ID, nil, err)
			return eris.Wrap(err, "run-all")
		}

		result, err := finishRun(ctx, st, run.ID, res, format, runAllOut)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	runAllCmd.Flags().StringVar(&runAllDataType, "data-type", "contacts", "record kind to extract, mapped per source")
	runAllCmd.Flags().IntVar(&runAllMaxResults, "max-results", 0, "cap on records per source (0 = unlimited)")
	runAllCmd.Flags().StringVar(&runAllFormat, "format", "", "export format (xlsx, csv, json, txt; default from config)")
	runAllCmd.Flags().StringVar(&runAllOut, "out", "", "export destination path (default under export dir)")
	rootCmd.AddCommand(runAllCmd)
}
