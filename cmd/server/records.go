package main

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/photo-diary/backend/internal/logging"
	"github.com/photo-diary/backend/internal/models"
	"github.com/photo-diary/backend/internal/storage"
	"github.com/spf13/cobra"
)

func newRecordsCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "records",
		Short: "List stored photo records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(*configFlag, false)
			if err != nil {
				return err
			}

			store, err := storage.NewJSONRecordStore(cfg.GetRecordsPath(), logging.NewNop())
			if err != nil {
				return err
			}

			writeRecords(cmd.OutOrStdout(), store.Load(cmd.Context()), time.Now())
			return nil
		},
	}
}

func writeRecords(w io.Writer, photos []models.Photo, now time.Time) {
	if len(photos) == 0 {
		fmt.Fprintln(w, "No photos")
		return
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "Filename", "URL", "Uploaded", "Age"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})

	epoch := time.Unix(0, 0)
	for i, p := range photos {
		uploaded, age := "-", "-"
		if t := p.EffectiveTime(); !t.Equal(epoch) {
			uploaded = models.FormatTimestamp(t)
			age = humanize.RelTime(t, now, "ago", "from now")
		}
		tw.AppendRow(table.Row{i + 1, p.Filename, p.ResolvedURL(), uploaded, age})
	}

	fmt.Fprintln(w, tw.Render())
	fmt.Fprintf(w, "%s total\n", humanize.Comma(int64(len(photos))))
}
