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
	runSource     string
	runDataType   string
	runMaxResults int
	runFormat     string
	runOut        string
)

var runCmd = &cobra.Command{
	Use:   "run <query>",
	Short: "Run one scraping source for a query",
	Long:  "Runs a single source (websearch, pronet, or mapsearch) for a free-text query, then normalizes, deduplicates, and exports the leads.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext(cmd)
		defer stop()

		src := model.Source(runSource)
		switch src {
		case model.SourceWebSearch, model.SourcePronet, model.SourceMapSearch:
		default:
			return eris.Errorf("unknown source %q (want websearch|pronet|mapsearch)", runSource)
		}

		formatName := runFormat
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
		opts := newRunOptions(runDataType, runMaxResults)

		run, err := st.CreateRun(ctx, q, src, opts)
		if err != nil {
			return err
		}
		_ = st.UpdateRunStatus(ctx, run.ID, model.RunStatusRunningSource)

		zap.L().Info("run: starting",
			zap.String("run_id", run.ID),
			zap.String("source", string(src)),
			zap.String("query", q.Raw),
			zap.String("data_type", runDataType),
		)

		res, err := buildOrchestrator().RunSingle(ctx, src, q, opts)
		if err != nil {
			failRun(ctx, st, run.ID, nil, err)
			return eris.Wrap(err, "run")
		}

		result, err := finishRun(ctx, st, run.ID, res, format, runOut)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	runCmd.Flags().StringVar(&runSource, "source", "websearch", "source to run (websearch, pronet, mapsearch)")
	runCmd.Flags().StringVar(&runDataType, "data-type", "emails", "record kind to extract (source-dependent)")
	runCmd.Flags().IntVar(&runMaxResults, "max-results", 0, "cap on records per source (0 = unlimited)")
	runCmd.Flags().StringVar(&runFormat, "format", "", "export format (xlsx, csv, json, txt; default from config)")
	runCmd.Flags().StringVar(&runOut, "out", "", "export destination path (default under export dir)")
	rootCmd.AddCommand(runCmd)
}
