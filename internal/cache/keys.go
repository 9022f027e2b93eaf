package cache

// Cache keys mirror the Stride API query descriptors. The prefetch engine
// and the view layer's own fetches must agree on these so a warmed entry
// is actually hit.
const (
	KeyShoesList      = "shoes:list"
	KeyRunsList       = "runs:list"
	KeyActivityRecent = "activity:recent"
	KeyStatsSummary   = "stats:summary"
)

func KeyShoeDetail(shoeID string) string {
	return "shoes:detail:" + shoeID
}

func KeyShoeRuns(shoeID string) string {
	return "shoes:runs:" + shoeID
}

func KeyRunDetail(runID string) string {
	return "runs:detail:" + runID
}
