package dashboard

import (
	"math"
	"slices"

	"github.com/GHIG-Portal/webinar-registration/registration"
)

type Stats struct {
	Total          int
	Paid           int
	Free           int
	TotalRevenue   int64
	PaidPercentage float64
	FreePercentage float64
	// AveragePaidAmount is rounded to the nearest whole cedi.
	AveragePaidAmount int64
	// PotentialRevenue brackets what free members would bring in at the
	// cheapest and the dearest tariff.
	PotentialRevenueMin int64
	PotentialRevenueMax int64
}

// ComputeStats always covers the full record set, never a page of it.
func ComputeStats(records []registration.Registration) Stats {
	stats := Stats{Total: len(records)}

	for _, r := range records {
		if r.Paid() {
			stats.Paid++
			stats.TotalRevenue += r.Amount()
		} else {
			stats.Free++
		}
	}

	stats.PaidPercentage = percentage(stats.Paid, stats.Total)
	stats.FreePercentage = percentage(stats.Free, stats.Total)

	if stats.Paid > 0 {
		stats.AveragePaidAmount = int64(math.Round(float64(stats.TotalRevenue) / float64(stats.Paid)))
	}

	tariffs := make([]int64, 0, len(registration.PriceOptions))
	for _, p := range registration.PriceOptions {
		tariffs = append(tariffs, p.Amount())
	}
	stats.PotentialRevenueMin = int64(stats.Free) * slices.Min(tariffs)
	stats.PotentialRevenueMax = int64(stats.Free) * slices.Max(tariffs)

	return stats
}

func percentage(count int, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}
