package cli

import (
	"github.com/spf13/cobra"

	"heinscrape/internal/storage"
	"heinscrape/internal/table"
)

func newRunCmd(a *app) *cobra.Command {
	var (
		src sourceFlags
		out outputs
		raw string
	)

	cmd := &cobra.Command{
		Use:   "run [pages...]",
		Short: "Scrape pages and beautify the records in one pass",
		RunE: func(cmd *cobra.Command, args []string) error {
			sources, err := src.sources(args)
			if err != nil {
				return err
			}

			st := storage.NewStorage(a.logger)
			raws, err := a.scrape(cmd.Context(), sources, src.dedupe, st)
			if err != nil {
				return err
			}

			records, tbl, err := a.beautify(cmd.Context(), raws, table.Options{IncludeSource: out.includeSource}, st)
			if err != nil {
				return err
			}

			if raw != "" {
				if err := st.SaveRaw(raw, raws); err != nil {
					return err
				}
			}
			return a.write(cmd.Context(), out, records, tbl, st)
		},
	}

	src.bind(cmd)
	bindOutputs(cmd, &out)
	cmd.Flags().StringVar(&raw, "raw", "", "Also keep the intermediate raw CSV")

	return cmd
}
