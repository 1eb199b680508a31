package commands

import "time"

// lagThresholds maps the rolling tick average to a label. The first entry
// whose bound is above the average wins.
var lagThresholds = []struct {
	below time.Duration
	label string
}{
	{20 * time.Millisecond, "perfectly smooth"},
	{35 * time.Millisecond, "good"},
	{40 * time.Millisecond, "tiny lag"},
	{50 * time.Millisecond, "lag"},
}

// LagLabel returns the qualitative label for a tick average
func LagLabel(avg time.Duration) string {
	for _, t := range lagThresholds {
		if avg < t.below {
			return t.label
		}
	}
	return "extremely high lag"
}
