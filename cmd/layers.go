package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/location-finder/internal/layer"
)

var layersCmd = &cobra.Command{
	Use:   "layers",
	Short: "List the available map data layers",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TYPE\tLABEL\tCONFIG KEYS\tDESCRIPTION")
		for _, t := range layer.Types() {
			def := layer.Get(t)
			keys := make([]string, 0, len(def.DefaultConfig))
			for k := range def.DefaultConfig {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", def.Type, def.Label, strings.Join(keys, ","), def.Description)
		}
		return w.Flush()
	},
}

func init() { rootCmd.AddCommand(layersCmd) }
