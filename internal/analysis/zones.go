package analysis

import "github.com/san-kum/fresim/internal/sim"

// Occupancy counts the entries in each zone, including index 0.
func Occupancy(res *sim.Result) map[sim.Zone]int {
	counts := map[sim.Zone]int{
		sim.ZoneStable: 0,
		sim.ZoneWatch:  0,
		sim.ZoneBreach: 0,
	}
	for _, z := range res.Zones {
		counts[z]++
	}
	return counts
}

// LongestRun is the longest consecutive stretch spent in zone.
func LongestRun(res *sim.Result, zone sim.Zone) int {
	best, cur := 0, 0
	for _, z := range res.Zones {
		if z == zone {
			cur++
			if cur > best {
				best = cur
			}
			continue
		}
		cur = 0
	}
	return best
}

// WorstZone returns the most severe zone visited.
func WorstZone(res *sim.Result) sim.Zone {
	worst := sim.ZoneStable
	for _, z := range res.Zones {
		if z.Severity() > worst.Severity() {
			worst = z
		}
	}
	return worst
}
