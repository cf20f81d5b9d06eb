package finder

import "github.com/sells-group/location-finder/internal/layer"

// shouldRefetch decides whether a layer instance needs a fresh fetch after a
// state transition from prev to next. Pure and deterministic: it reads only
// its arguments. in is the instance as it appears in next.
func shouldRefetch(in *layer.Instance, prev, next State) bool {
	// Nothing to fetch against, and invisible layers never fetch.
	if next.Center == nil || !in.Visible {
		return false
	}

	// Initial fetch: the layer has no data, no error, and is not loading.
	if !in.Fetched() {
		return true
	}

	// Center moved. Exact equality; any delta counts.
	if prev.Center == nil || prev.Center.Lat != next.Center.Lat || prev.Center.Lng != next.Center.Lng {
		return true
	}

	// Radius changed. Only relevant once the layer holds data; an unfetched
	// layer is already covered by the initial-fetch rule.
	if prev.RadiusMiles != next.RadiusMiles && in.Data != nil {
		return true
	}

	// A significant config field changed to a non-empty value. Other config
	// edits (e.g. unrelated keystrokes) do not trigger fetches.
	if prevIn := prev.LayerByID(in.ID); prevIn != nil {
		for _, field := range layer.Get(in.Type).SignificantFields {
			nextVal, _ := in.Config[field].(string)
			prevVal, _ := prevIn.Config[field].(string)
			if nextVal != prevVal && nextVal != "" {
				return true
			}
		}
	}

	return false
}
