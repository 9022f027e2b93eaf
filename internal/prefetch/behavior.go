package prefetch

import "sort"

const (
	// interactionThreshold is the count a route must strictly exceed
	// before its interactions are treated as a signal.
	interactionThreshold = 2

	// maxRankedRoutes caps how many interaction-ranked routes are
	// considered per resolution.
	maxRankedRoutes = 3

	// recentHistoryWindow is how many recent visits are inspected.
	recentHistoryWindow = 3
)

// BehaviorResolver derives supplementary, lower-confidence prefetch tasks
// from accumulated interaction counts and recent navigation history. It is
// purely advisory: wrong predictions waste a fetch, nothing more, so it
// degrades silently to no suggestions when its inputs are empty.
type BehaviorResolver struct {
	f        *fetcher
	observer *Observer
}

func (b *BehaviorResolver) Resolve() []Task {
	var tasks []Task
	seen := make(map[string]bool)
	add := func(ts ...Task) {
		for _, t := range ts {
			if seen[t.Key] {
				continue
			}
			seen[t.Key] = true
			tasks = append(tasks, t)
		}
	}

	for _, route := range b.rankedRoutes() {
		segments := splitRoute(route)
		id, ok := detailID(segments)
		if !ok {
			continue
		}
		switch segments[0] {
		case "shoes":
			add(
				b.f.shoeDetail(id, PriorityLow),
				b.f.shoeRuns(id, PriorityLow),
			)
		case "runs":
			add(b.f.runDetail(id, PriorityLow))
		}
	}

	history := b.observer.History()
	if len(history) > recentHistoryWindow {
		history = history[:recentHistoryWindow]
	}
	for _, route := range history {
		segments := splitRoute(route)
		// visits to the activity log usually lead to the stats screen
		if len(segments) == 1 && segments[0] == "activity" {
			add(b.f.statsSummary(PriorityLow))
		}
	}

	return tasks
}

// rankedRoutes returns up to maxRankedRoutes routes whose interaction
// count strictly exceeds the threshold, most interacted with first.
// Ties break on route name so resolution is deterministic.
func (b *BehaviorResolver) rankedRoutes() []string {
	counts := b.observer.Interactions()

	type ranked struct {
		route string
		count int
	}
	candidates := make([]ranked, 0, len(counts))
	for route, count := range counts {
		if count > interactionThreshold {
			candidates = append(candidates, ranked{route: route, count: count})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].count != candidates[j].count {
			return candidates[i].count > candidates[j].count
		}
		return candidates[i].route < candidates[j].route
	})

	if len(candidates) > maxRankedRoutes {
		candidates = candidates[:maxRankedRoutes]
	}

	routes := make([]string, len(candidates))
	for i, c := range candidates {
		routes[i] = c.route
	}
	return routes
}
