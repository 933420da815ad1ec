package aggregate

// LargestPerUnit picks, for every unit, the group with the most rows. Ties go
// to the first concentration in lexicographic order. Units without groups are
// left out. Nothing in agg is modified.
func LargestPerUnit(agg *Aggregated) map[string]*Group {
	out := make(map[string]*Group, len(agg.Groups))
	for _, u := range agg.Units() {
		var best *Group
		for _, c := range agg.Concentrations(u) {
			g := agg.Groups[u][c]
			if g == nil {
				continue
			}
			if best == nil || g.Table.NumRows() > best.Table.NumRows() {
				best = g
			}
		}
		if best != nil {
			out[u] = best
		}
	}
	return out
}
