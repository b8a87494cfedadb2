package streak

// Milestone is a streak-length achievement. The table is fixed product
// content; achievement is derived from the current streak, never stored.
type Milestone struct {
	ID          string `json:"id"`
	Days        int    `json:"days"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Achieved    bool   `json:"achieved"`
}

// milestoneTable is ordered by ascending day count.
var milestoneTable = []Milestone{
	{ID: "1day", Days: 1, Title: "First Step", Description: "Your journey begins with a single day!"},
	{ID: "3days", Days: 3, Title: "Momentum Builder", Description: "Three days strong - building habits!"},
	{ID: "1week", Days: 7, Title: "Week Warrior", Description: "A full week! You're officially on fire!"},
	{ID: "2weeks", Days: 14, Title: "Fortnight Fighter", Description: "Two weeks down - unstoppable momentum!"},
	{ID: "1month", Days: 30, Title: "Monthly Master", Description: "One month sugar-free! What a champion!"},
	{ID: "50days", Days: 50, Title: "Halfway Hero", Description: "50 days! You're halfway to 100!"},
	{ID: "100days", Days: 100, Title: "Century Star", Description: "100 days! You're absolutely incredible!"},
	{ID: "365days", Days: 365, Title: "Yearly Legend", Description: "A full year! You're a true legend!"},
}

// Milestones returns the milestone table with Achieved set against the
// given streak length.
func Milestones(currentStreak int) []Milestone {
	out := make([]Milestone, len(milestoneTable))
	copy(out, milestoneTable)
	for i := range out {
		out[i].Achieved = currentStreak >= out[i].Days
	}
	return out
}

// NextMilestone returns the first unachieved milestone, or nil once all are
// reached.
func NextMilestone(currentStreak int) *Milestone {
	for _, m := range Milestones(currentStreak) {
		if !m.Achieved {
			next := m
			return &next
		}
	}
	return nil
}
