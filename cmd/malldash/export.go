package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"malldash/internal/config"
	"malldash/internal/exporter"
	"malldash/internal/service/dashboard"
)

type exportOptions struct {
	output string
	filter dashboard.Filter
}

func newExportCmd(global *globalOptions) *cobra.Command {
	var opts exportOptions

	cmd := &cobra.Command{
		Use:   "export",
		Short: "导出订单为 xlsx",
		Args:  cobra.NoArgs,
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

			col, err := st.Load(cmd.Context())
			if err != nil {
				return err
			}

			output := opts.output
			if output == "" {
				output = filepath.Join(config.ResolveDataDir(cfg), "exports",
					fmt.Sprintf("orders-%s.xlsx", time.Now().Format("20060102-150405")))
			}

			orders := opts.filter.Apply(col.Orders)
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", output, err)
			}
			defer f.Close()

			exp := exporter.New(col.Malls, func(p exporter.ProgressEvent) {
				logger.Debug().Int("percent", p.Percent).Str("stage", p.Stage).Msg("export progress")
			})
			if err := exp.WriteTo(f, orders); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d건 → %s\n", len(orders), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "输出文件（默认 data/exports 下）")
	cmd.Flags().StringVar(&opts.filter.From, "from", "", "起始日期 YYYY-MM-DD")
	cmd.Flags().StringVar(&opts.filter.To, "to", "", "结束日期 YYYY-MM-DD")
	cmd.Flags().StringVar(&opts.filter.MallID, "mall", "", "商城 ID")
	cmd.Flags().StringVar(&opts.filter.Category, "category", "", "分类")
	return cmd
}
