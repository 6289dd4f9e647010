package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"heinscrape/internal/storage"
)

// sourceFlags are shared by the commands that read result pages.
type sourceFlags struct {
	list   string
	dedupe bool
}

func (f *sourceFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.list, "list", "l", "", "File with one page path or URL per line")
	cmd.Flags().BoolVar(&f.dedupe, "dedupe", false, "Drop records repeated across pages")
}

// sources returns the pages named on the command line followed by those in
// the list file.
func (f *sourceFlags) sources(args []string) ([]string, error) {
	sources := append([]string{}, args...)
	if f.list == "" {
		return sources, nil
	}
	listed, err := readSources(f.list)
	if err != nil {
		return nil, err
	}
	return append(sources, listed...), nil
}

func newScrapeCmd(a *app) *cobra.Command {
	var (
		src    sourceFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "scrape [pages...]",
		Short: "Extract raw citation records from result pages",
		Long: `Extract raw citation records from saved HeinOnline result pages.

Pages are local files or http(s) URLs and are merged in the order given.
Each article becomes one headerless CSV row: handle, PDF link, match count,
snippet, then one cell per result line.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sources, err := src.sources(args)
			if err != nil {
				return err
			}

			st := storage.NewStorage(a.logger)
			records, err := a.scrape(cmd.Context(), sources, src.dedupe, st)
			if err != nil {
				return err
			}
			return st.SaveRaw(output, records)
		},
	}

	src.bind(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "data.csv", "Raw CSV output file (- for stdout)")

	return cmd
}

func readSources(filename string) ([]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open page list: %w", err)
	}
	defer file.Close()

	var sources []string
	scanner := bufio.NewScanner(file)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" && !strings.HasPrefix(line, "#") {
			sources = append(sources, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading page list: %w", err)
	}

	return sources, nil
}
