package cli

import (
	"github.com/spf13/cobra"

	"heinscrape/internal/citation"
	"heinscrape/internal/storage"
	"heinscrape/internal/table"
)

func bindOutputs(cmd *cobra.Command, out *outputs) {
	cmd.Flags().StringVarP(&out.csv, "output", "o", "beautifiedData.csv", "Flat CSV output file (- for stdout)")
	cmd.Flags().StringVar(&out.json, "json", "", "Also write the typed records as JSON")
	cmd.Flags().StringVar(&out.sqlite, "sqlite", "", "Also write the flat table into the citations table of a SQLite database")
	cmd.Flags().StringVar(&out.stats, "stats", "", "Write run statistics as JSON")
	cmd.Flags().BoolVar(&out.includeSource, "include-source", false, "Add a Source column with the joined record text")
}

func newBeautifyCmd(a *app) *cobra.Command {
	var (
		input string
		out   outputs
	)

	cmd := &cobra.Command{
		Use:   "beautify",
		Short: "Turn a raw CSV into a flat citation table",
		Long: `Classify and parse every raw record into title, journal, year range and
authors, then write one row per record with one column per field.

A record with an author entry of unexpected shape stops the run before any
output is written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				raws []citation.RawRecord
				err  error
			)
			if input == "-" {
				raws, err = storage.ReadRaw(cmd.InOrStdin())
			} else {
				raws, err = storage.ReadRawFile(input)
			}
			if err != nil {
				return err
			}

			st := storage.NewStorage(a.logger)
			st.Update(func(s *storage.Stats) { s.RawRecords = len(raws) })

			records, tbl, err := a.beautify(cmd.Context(), raws, table.Options{IncludeSource: out.includeSource}, st)
			if err != nil {
				return err
			}
			return a.write(cmd.Context(), out, records, tbl, st)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "data.csv", "Raw CSV input file (- for stdin)")
	bindOutputs(cmd, &out)

	return cmd
}
