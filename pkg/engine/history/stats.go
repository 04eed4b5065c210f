package history

import "sort"

// StrategyStats aggregates snapshots recorded under one strategy.
type StrategyStats struct {
	Strategy     string
	Runs         int
	MeanFill     float64
	BestValue    float64
	MeanUnplaced float64
}

// Summarize groups snapshots by strategy, ordered by strategy name.
func Summarize(history []Snapshot) []StrategyStats {
	byStrategy := make(map[string]*StrategyStats)
	for _, s := range history {
		st, ok := byStrategy[s.Strategy]
		if !ok {
			st = &StrategyStats{Strategy: s.Strategy}
			byStrategy[s.Strategy] = st
		}
		st.Runs++
		st.MeanFill += s.FillRatio
		st.MeanUnplaced += float64(s.UnplacedCount)
		if s.TotalValue > st.BestValue {
			st.BestValue = s.TotalValue
		}
	}

	out := make([]StrategyStats, 0, len(byStrategy))
	for _, st := range byStrategy {
		st.MeanFill /= float64(st.Runs)
		st.MeanUnplaced /= float64(st.Runs)
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Strategy < out[j].Strategy })
	return out
}
