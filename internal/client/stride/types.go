package stride

import "time"

type Shoe struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	Name       string     `json:"name"`
	Brand      string     `json:"brand"`
	Model      string     `json:"model"`
	DistanceKm float64    `json:"distance_km"`
	MaxKm      float64    `json:"max_km"`
	RetiredAt  *time.Time `json:"retired_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

type Run struct {
	ID         string        `json:"id"`
	UserID     string        `json:"user_id"`
	ShoeID     string        `json:"shoe_id"`
	StartedAt  time.Time     `json:"started_at"`
	DistanceKm float64       `json:"distance_km"`
	Duration   time.Duration `json:"duration_ns"`
	Notes      string        `json:"notes,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

type ActivityKind string

const (
	ActivityKindRunLogged   ActivityKind = "run_logged"
	ActivityKindShoeAdded   ActivityKind = "shoe_added"
	ActivityKindShoeRetired ActivityKind = "shoe_retired"
)

type ActivityEntry struct {
	ID         string       `json:"id"`
	Kind       ActivityKind `json:"kind"`
	Message    string       `json:"message"`
	OccurredAt time.Time    `json:"occurred_at"`
}

type SummaryStats struct {
	TotalRuns        int     `json:"total_runs"`
	TotalDistanceKm  float64 `json:"total_distance_km"`
	WeeklyDistanceKm float64 `json:"weekly_distance_km"`
	ActiveShoes      int     `json:"active_shoes"`
}
