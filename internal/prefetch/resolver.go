package prefetch

import "strings"

// creationSentinel is the path segment used by creation forms; it never
// names an existing entity, so it yields no detail prefetch.
const creationSentinel = "new"

// RouteResolver maps a navigation target to the prefetch tasks worth
// running for it. It has no side effects beyond returning task
// descriptors, and the same route always resolves to the same task keys.
type RouteResolver struct {
	f *fetcher
}

// Critical returns the task set for the datasets needed on nearly every
// authenticated screen: the shoe collection, the run list, recent
// activity, and summary statistics. Used for login warm-up and first
// paint.
func (r *RouteResolver) Critical() []Task {
	return []Task{
		r.f.shoesList(PriorityHigh),
		r.f.runsList(PriorityHigh),
		r.f.recentActivity(PriorityHigh),
		r.f.statsSummary(PriorityHigh),
	}
}

// Resolve returns the tasks for route. Unknown routes resolve to nothing;
// that is not an error.
func (r *RouteResolver) Resolve(route string) []Task {
	segments := splitRoute(route)
	if len(segments) == 0 {
		// the dashboard needs the same datasets as first paint
		return r.Critical()
	}

	switch segments[0] {
	case "shoes":
		tasks := []Task{r.f.shoesList(PriorityMedium)}
		if id, ok := detailID(segments); ok {
			tasks = append(tasks,
				r.f.shoeDetail(id, PriorityMedium),
				r.f.shoeRuns(id, PriorityMedium),
			)
		}
		return tasks
	case "runs":
		// the run form needs the shoe list for its shoe picker
		tasks := []Task{
			r.f.runsList(PriorityMedium),
			r.f.shoesList(PriorityMedium),
		}
		if id, ok := detailID(segments); ok {
			tasks = append(tasks, r.f.runDetail(id, PriorityMedium))
		}
		return tasks
	case "activity":
		return []Task{
			r.f.recentActivity(PriorityMedium),
			r.f.statsSummary(PriorityMedium),
		}
	case "stats":
		return []Task{
			r.f.statsSummary(PriorityMedium),
			r.f.recentActivity(PriorityMedium),
		}
	default:
		return nil
	}
}

// normalizeRoute canonicalizes a route for map lookups: no query, no
// trailing slash, leading slash kept.
func normalizeRoute(route string) string {
	return "/" + strings.Join(splitRoute(route), "/")
}

func splitRoute(route string) []string {
	if i := strings.IndexByte(route, '?'); i >= 0 {
		route = route[:i]
	}
	route = strings.Trim(route, "/")
	if route == "" {
		return nil
	}
	return strings.Split(route, "/")
}

// detailID extracts the entity id from a detail-shaped route
// (/<entity>/<id>), rejecting the creation sentinel.
func detailID(segments []string) (string, bool) {
	if len(segments) < 2 {
		return "", false
	}
	id := segments[1]
	if id == "" || id == creationSentinel {
		return "", false
	}
	return id, true
}
