package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/location-finder/internal/assistant"
	"github.com/sells-group/location-finder/internal/finder"
	"github.com/sells-group/location-finder/internal/layer"
	"github.com/sells-group/location-finder/pkg/geocode"
)

var sessionRadius float64

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Interactive finder session",
	Long: `Drive a finder session from the terminal.

Commands:
  search <text>          address suggestions (debounced, min 3 chars)
  pick <n>               set center from suggestion n
  center <lat> <lng>     set center directly
  radius <miles>         change the search radius
  add <type>             activate a layer
  remove <type>          deactivate a layer
  toggle <type>          show/hide a layer
  config <type> <k> <v>  set one layer config value
  state                  print the current map state
  zones [business-type]  rank optimal sub-areas
  quit                   exit

Anything else is sent to the AI interpreter.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !finder.ValidRadius(sessionRadius) {
			return eris.Errorf("radius %.1f is not selectable; options are %v", sessionRadius, finder.RadiusOptions)
		}

		geo, err := newGeocodeClient()
		if err != nil {
			return eris.Wrap(err, "init geocoder")
		}
		defer geo.Close() //nolint:errcheck

		api := newBackendClient()
		ctrl := finder.NewController(layer.NewFetcher(api), sessionRadius)
		defer ctrl.Close()

		repl := &sessionREPL{
			ctrl:   ctrl,
			bridge: assistant.NewBridge(api, ctrl),
			zones:  finder.NewZoneFinder(api),
		}
		debounce := time.Duration(cfg.Finder.DebounceMillis) * time.Millisecond
		repl.auto = finder.NewAutocomplete(geo, debounce, repl.onSuggestions)
		defer repl.auto.Close()

		fmt.Println("locfinder session. Type a command or an instruction; \"quit\" to exit.")
		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print("> ")
			if !scanner.Scan() {
				break
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if line == "quit" || line == "exit" {
				break
			}
			repl.dispatch(cmd, line)
		}
		return scanner.Err()
	},
}

type sessionREPL struct {
	ctrl   *finder.Controller
	bridge *assistant.Bridge
	auto   *finder.Autocomplete
	zones  *finder.ZoneFinder

	mu          sync.Mutex
	suggestions []geocode.Suggestion
}

func (s *sessionREPL) onSuggestions(query string, results []geocode.Suggestion) {
	s.mu.Lock()
	s.suggestions = results
	s.mu.Unlock()
	if len(results) == 0 {
		fmt.Printf("\nno matches for %q\n> ", query)
		return
	}
	var b strings.Builder
	fmt.Fprintf(&b, "\nmatches for %q:\n", query)
	for i, r := range results {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, r.DisplayName)
	}
	b.WriteString("> ")
	fmt.Print(b.String())
}

func (s *sessionREPL) dispatch(cmd *cobra.Command, line string) {
	fields := strings.Fields(line)
	switch fields[0] {
	case "search":
		s.auto.Input(strings.TrimPrefix(line, "search "))
	case "pick":
		s.pick(fields[1:])
	case "center":
		s.center(fields[1:])
	case "radius":
		s.radius(fields[1:])
	case "add", "remove", "toggle":
		s.layerOp(fields[0], fields[1:])
	case "config":
		s.config(fields[1:])
	case "state":
		s.printState()
	case "zones":
		s.rankZones(cmd, fields[1:])
	default:
		msg, err := s.bridge.Interpret(cmd.Context(), line)
		if err != nil {
			fmt.Println("error:", err)
			return
		}
		fmt.Println(msg)
	}
}

func (s *sessionREPL) pick(args []string) {
	if len(args) != 1 {
		fmt.Println("usage: pick <n>")
		return
	}
	n, err := strconv.Atoi(args[0])
	s.mu.Lock()
	current := s.suggestions
	s.mu.Unlock()
	if err != nil || n < 1 || n > len(current) {
		fmt.Println("no such suggestion")
		return
	}
	p := s.auto.Select(current[n-1])
	s.ctrl.SetCenter(&p)
	fmt.Printf("center set to %s (%.5f, %.5f)\n", p.Address, p.Lat, p.Lng)
}

func (s *sessionREPL) center(args []string) {
	if len(args) != 2 {
		fmt.Println("usage: center <lat> <lng>")
		return
	}
	lat, errLat := strconv.ParseFloat(args[0], 64)
	lng, errLng := strconv.ParseFloat(args[1], 64)
	if errLat != nil || errLng != nil {
		fmt.Println("lat and lng must be numbers")
		return
	}
	s.ctrl.SetCenter(&layer.Point{Lat: lat, Lng: lng})
	fmt.Printf("center set to (%.5f, %.5f)\n", lat, lng)
}

func (s *sessionREPL) radius(args []string) {
	if len(args) != 1 {
		fmt.Println("usage: radius <miles>")
		return
	}
	miles, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		fmt.Println("miles must be a number")
		return
	}
	if err := s.ctrl.SetRadius(miles); err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Printf("radius set to %.0f miles\n", miles)
}

func (s *sessionREPL) layerOp(op string, args []string) {
	if len(args) != 1 {
		fmt.Printf("usage: %s <type>\n", op)
		return
	}
	t := layer.Type(args[0])
	if op == "add" {
		if err := s.ctrl.AddLayer(t); err != nil {
			fmt.Println("error:", err)
		}
		return
	}
	in := s.ctrl.Snapshot().LayerByType(t)
	if in == nil {
		fmt.Printf("layer %s is not active\n", t)
		return
	}
	if op == "remove" {
		s.ctrl.RemoveLayer(in.ID)
	} else {
		s.ctrl.ToggleVisibility(in.ID)
	}
}

func (s *sessionREPL) config(args []string) {
	if len(args) != 3 {
		fmt.Println("usage: config <type> <key> <value>")
		return
	}
	in := s.ctrl.Snapshot().LayerByType(layer.Type(args[0]))
	if in == nil {
		fmt.Printf("layer %s is not active\n", args[0])
		return
	}
	s.ctrl.SetLayerConfig(in.ID, map[string]any{args[1]: args[2]})
}

func (s *sessionREPL) printState() {
	st := s.ctrl.Snapshot()
	if st.Center == nil {
		fmt.Println("center: none")
	} else if st.Center.Address != "" {
		fmt.Printf("center: %s (%.5f, %.5f)\n", st.Center.Address, st.Center.Lat, st.Center.Lng)
	} else {
		fmt.Printf("center: (%.5f, %.5f)\n", st.Center.Lat, st.Center.Lng)
	}
	fmt.Printf("radius: %.0f miles\n", st.RadiusMiles)
	if len(st.Layers) == 0 {
		fmt.Println("layers: none")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TYPE\tVISIBLE\tSTATUS\tFEATURES")
	for _, in := range st.Layers {
		status := "idle"
		switch {
		case in.Loading:
			status = "loading"
		case in.Error != "":
			status = "error: " + in.Error
		case in.Data != nil && in.Data.Metadata.AwaitingCategory:
			status = "awaiting category"
		case in.Data != nil:
			status = "loaded"
		}
		count := ""
		if in.Data != nil && in.Data.Collection != nil {
			count = strconv.Itoa(in.Data.Metadata.Count)
		}
		fmt.Fprintf(w, "%s\t%v\t%s\t%s\n", in.Type, in.Visible, status, count)
	}
	w.Flush() //nolint:errcheck
}

func (s *sessionREPL) rankZones(cmd *cobra.Command, args []string) {
	business := strings.Join(args, " ")
	report, err := s.zones.Find(cmd.Context(), s.ctrl.Snapshot(), finder.ZoneQuery{
		TargetRadiusMiles: 1,
		BusinessType:      business,
		TopN:              cfg.Finder.ZoneTopN,
	})
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tSCORE\tLAT\tLNG\tREASONS")
	for _, z := range report.Zones {
		fmt.Fprintf(w, "%d\t%.2f\t%.5f\t%.5f\t%s\n", z.Rank, z.Score, z.CenterLat, z.CenterLng, strings.Join(z.Reasons, "; "))
	}
	w.Flush() //nolint:errcheck
	if report.Summary != "" {
		fmt.Println(report.Summary)
	}
}

func init() {
	sessionCmd.Flags().Float64Var(&sessionRadius, "radius", 5, "initial search radius in miles")
	rootCmd.AddCommand(sessionCmd)
}
