package pricing

import (
	"fmt"
	"math"

	"privatehire/internal/types"
)

// FormatDistance renders metres as "850 m" under a tenth of a mile, else "23.6 miles".
func FormatDistance(meters float64) string {
	miles := meters / MetersPerMile
	if miles < 0.1 {
		return fmt.Sprintf("%d m", int64(math.Round(meters)))
	}
	return fmt.Sprintf("%.1f miles", miles)
}

// FormatDuration renders seconds as "40 min" or "1h 5m".
func FormatDuration(seconds float64) string {
	minutes := int64(math.Round(seconds / 60))
	if minutes < 60 {
		return fmt.Sprintf("%d min", minutes)
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

func FormatPrice(m types.Money) string {
	return fmt.Sprintf("£%d.%02d", m.Amount/100, m.Amount%100)
}
