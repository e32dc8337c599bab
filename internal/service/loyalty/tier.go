package loyalty

import (
	"sort"

	"github.com/jwalitptl/salon-api/internal/model"
)

// NormalizeTiers orders tiers by MinPoints and derives MaxPoints so that
// bands never overlap. The last tier is unbounded.
func NormalizeTiers(tiers []model.Tier) []model.Tier {
	out := sortedTiers(tiers)
	for i := range out {
		if i == len(out)-1 {
			out[i].MaxPoints = nil
			continue
		}
		upper := out[i+1].MinPoints - 1
		out[i].MaxPoints = &upper
	}
	return out
}

// ResolveTier picks the last tier whose threshold is at or below points.
// Tiers sharing a threshold resolve to the one later in program order.
// level is 1-based; ok is false when points are below every threshold.
func ResolveTier(tiers []model.Tier, points int) (tier model.Tier, level int, ok bool) {
	for i, t := range sortedTiers(tiers) {
		if t.MinPoints <= points {
			tier, level, ok = t, i+1, true
		}
	}
	return tier, level, ok
}

// NextTierProgress reports how far points are from the next tier up.
func NextTierProgress(tiers []model.Tier, points int) model.NextTierProgress {
	sorted := sortedTiers(tiers)

	floor := 0
	for _, t := range sorted {
		if t.MinPoints > points {
			span := t.MinPoints - floor
			pct := 0
			if span > 0 {
				pct = (points - floor) * 100 / span
			}
			return model.NextTierProgress{
				NextTier:           t.Name,
				PointsNeeded:       t.MinPoints - points,
				ProgressPercentage: clamp(pct, 0, 100),
			}
		}
		floor = t.MinPoints
	}

	return model.NextTierProgress{ProgressPercentage: 100}
}

func sortedTiers(tiers []model.Tier) []model.Tier {
	out := make([]model.Tier, len(tiers))
	copy(out, tiers)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MinPoints < out[j].MinPoints
	})
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
