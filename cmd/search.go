package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Look up address suggestions for a free-text query",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		geo, err := newGeocodeClient()
		if err != nil {
			return eris.Wrap(err, "init geocoder")
		}
		defer geo.Close() //nolint:errcheck

		query := strings.Join(args, " ")
		suggestions, err := geo.Search(cmd.Context(), query, searchLimit)
		if err != nil {
			return eris.Wrapf(err, "search %q", query)
		}
		if len(suggestions) == 0 {
			fmt.Println("No matches.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "LAT\tLON\tSOURCE\tADDRESS")
		for _, s := range suggestions {
			fmt.Fprintf(w, "%.5f\t%.5f\t%s\t%s\n", s.Lat, s.Lon, s.Source, s.DisplayName)
		}
		return w.Flush()
	},
}

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", 5, "maximum number of suggestions")
	rootCmd.AddCommand(searchCmd)
}
