package main

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/location-finder/internal/finder"
	"github.com/sells-group/location-finder/internal/layer"
)

var (
	zonesLat          float64
	zonesLng          float64
	zonesAddress      string
	zonesRadius       float64
	zonesTargetRadius float64
	zonesBusinessType string
	zonesTopN         int
)

const zonesFetchTimeout = 60 * time.Second

var zonesCmd = &cobra.Command{
	Use:   "zones",
	Short: "Rank optimal sub-areas around a center",
	Long:  "Loads the demographics and competition layers for the given center, then asks the platform to rank candidate sub-areas within the analysis radius.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		center, err := resolveCenter(cmd)
		if err != nil {
			return err
		}
		if !finder.ValidRadius(zonesRadius) {
			return eris.Errorf("radius %.1f is not selectable; options are %v", zonesRadius, finder.RadiusOptions)
		}

		api := newRetryingBackendClient()
		ctrl := finder.NewController(layer.NewFetcher(api), zonesRadius)
		defer ctrl.Close()

		settled := make(chan struct{})
		var once sync.Once
		ctrl.OnChange(func(st finder.State) {
			for _, in := range st.Layers {
				if in.Loading || !in.Fetched() {
					return
				}
			}
			once.Do(func() { close(settled) })
		})

		if err := ctrl.AddLayer(layer.TypeDemographics); err != nil {
			return err
		}
		if err := ctrl.AddLayer(layer.TypeCompetition); err != nil {
			return err
		}
		if zonesBusinessType != "" {
			comp := ctrl.Snapshot().LayerByType(layer.TypeCompetition)
			ctrl.SetLayerConfig(comp.ID, map[string]any{"category": zonesBusinessType})
		}
		ctrl.SetCenter(center)

		select {
		case <-settled:
		case <-time.After(zonesFetchTimeout):
			zap.L().Warn("layer fetches did not settle; analyzing with partial data")
		case <-ctx.Done():
			return ctx.Err()
		}

		topN := zonesTopN
		if topN == 0 {
			topN = cfg.Finder.ZoneTopN
		}
		report, err := finder.NewZoneFinder(api).Find(ctx, ctrl.Snapshot(), finder.ZoneQuery{
			TargetRadiusMiles: zonesTargetRadius,
			BusinessType:      zonesBusinessType,
			TopN:              topN,
		})
		if err != nil {
			return eris.Wrap(err, "zone analysis")
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "RANK\tSCORE\tLAT\tLNG\tRADIUS\tREASONS")
		for _, z := range report.Zones {
			fmt.Fprintf(w, "%d\t%.2f\t%.5f\t%.5f\t%.1f mi\t%s\n",
				z.Rank, z.Score, z.CenterLat, z.CenterLng, z.RadiusMiles, strings.Join(z.Reasons, "; "))
		}
		if err := w.Flush(); err != nil {
			return err
		}
		if report.Summary != "" {
			fmt.Printf("\n%s\n", report.Summary)
		}
		return nil
	},
}

// resolveCenter takes --lat/--lng directly, or geocodes --address.
func resolveCenter(cmd *cobra.Command) (*layer.Point, error) {
	if zonesAddress != "" {
		geo, err := newGeocodeClient()
		if err != nil {
			return nil, eris.Wrap(err, "init geocoder")
		}
		defer geo.Close() //nolint:errcheck

		suggestions, err := geo.Search(cmd.Context(), zonesAddress, 1)
		if err != nil {
			return nil, eris.Wrapf(err, "geocode %q", zonesAddress)
		}
		if len(suggestions) == 0 {
			return nil, eris.Errorf("no match for address %q", zonesAddress)
		}
		best := suggestions[0]
		return &layer.Point{Lat: best.Lat, Lng: best.Lon, Address: best.DisplayName}, nil
	}
	if !cmd.Flags().Changed("lat") || !cmd.Flags().Changed("lng") {
		return nil, eris.New("either --address or both --lat and --lng are required")
	}
	return &layer.Point{Lat: zonesLat, Lng: zonesLng}, nil
}

func init() {
	zonesCmd.Flags().Float64Var(&zonesLat, "lat", 0, "center latitude")
	zonesCmd.Flags().Float64Var(&zonesLng, "lng", 0, "center longitude")
	zonesCmd.Flags().StringVar(&zonesAddress, "address", "", "center address (geocoded; overrides --lat/--lng)")
	zonesCmd.Flags().Float64Var(&zonesRadius, "radius", 5, "analysis radius in miles")
	zonesCmd.Flags().Float64Var(&zonesTargetRadius, "target-radius", 1, "candidate zone radius in miles")
	zonesCmd.Flags().StringVar(&zonesBusinessType, "business-type", "", "business category to analyze for")
	zonesCmd.Flags().IntVar(&zonesTopN, "top-n", 0, "number of zones to rank (default from config)")
	rootCmd.AddCommand(zonesCmd)
}
