package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"malldash/internal/importer"
	"malldash/internal/model"
	"malldash/internal/store"
	"malldash/internal/util"
)

type parseOptions struct {
	sheet  string
	asJSON bool
	useDB  bool
}

func newParseCmd(global *globalOptions) *cobra.Command {
	var opts parseOptions

	cmd := &cobra.Command{
		Use:   "parse FILE",
		Short: "解析表格并打印订单（不写入）",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd.Context(), cmd.OutOrStdout(), global, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.sheet, "sheet", "", "Sheet 名（默认第一个）")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "以 JSON 输出")
	cmd.Flags().BoolVar(&opts.useDB, "with-malls", true, "使用数据库中的商城登记表匹配商城")
	return cmd
}

func runParse(ctx context.Context, out io.Writer, global *globalOptions, opts parseOptions, path string) error {
	cfg, _, err := loadConfig(global)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	// 只读解析：商城登记表复制到内存存储，不写回数据库
	st := store.NewMemory()
	if opts.useDB {
		db, err := openStore(cfg, logger)
		if err != nil {
			return err
		}
		malls, err := db.Malls(ctx)
		_ = db.Close()
		if err != nil {
			return err
		}
		if err := st.Update(ctx, func(c *store.Collections) error {
			c.Malls = malls
			return nil
		}); err != nil {
			return err
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	coordinator := importer.NewCoordinator(st,
		importer.WithHeaders(cfg.HeaderTable()),
		importer.WithCSVEncoding(cfg.Import.CSVEncoding),
		importer.WithLogger(logger),
	)
	preview, err := coordinator.Preview(ctx, importer.PreviewRequest{
		Filename: filepath.Base(path),
		Reader:   f,
		Sheet:    sheetOrDefault(opts.sheet, cfg.Import.DefaultSheet),
	}, nil)
	if err != nil {
		return err
	}

	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(preview)
	}

	for _, w := range preview.Warnings {
		fmt.Fprintln(out, w)
	}
	fmt.Fprintln(out)
	for _, o := range preview.Orders {
		printOrder(out, o.Order)
	}
	return nil
}

func printOrder(out io.Writer, o model.Order) {
	mall := o.MallName
	if o.MallID == "" && mall != "" {
		mall += " (미연결)"
	}
	fmt.Fprintf(out, "%s  %-16s  %-12s  %s  %s개\n", o.Date, o.OrderNo, mall, util.FormatKRW(o.TotalAmount), util.FormatCount(o.TotalQty))
	for _, it := range o.Items {
		fmt.Fprintf(out, "    - %s x%d  %s\n", it.ProductName, it.Qty, util.FormatKRW(it.Amount))
	}
}

func sheetOrDefault(sheet, fallback string) string {
	if sheet != "" {
		return sheet
	}
	return fallback
}
