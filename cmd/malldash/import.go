package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"malldash/internal/importer"
)

type importOptions struct {
	sheet string
}

func newImportCmd(global *globalOptions) *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "解析表格并把全部订单合并进数据库",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(global)
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			st, err := openStore(cfg, logger)
			if err != nil {
				return err
			}
			defer st.Close()

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}
			defer f.Close()

			coordinator := importer.NewCoordinator(st,
				importer.WithHeaders(cfg.HeaderTable()),
				importer.WithCSVEncoding(cfg.Import.CSVEncoding),
				importer.WithLogger(logger),
			)
			preview, res, err := coordinator.ImportFile(cmd.Context(), importer.PreviewRequest{
				Filename: filepath.Base(args[0]),
				Reader:   f,
				Sheet:    sheetOrDefault(opts.sheet, cfg.Import.DefaultSheet),
			}, nil)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, w := range preview.Warnings {
				fmt.Fprintln(out, w)
			}
			fmt.Fprintln(out, res.Message)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.sheet, "sheet", "", "Sheet 名（默认第一个）")
	return cmd
}
