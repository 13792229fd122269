package inventory

import (
	"math"
	"time"

	"github.com/scienceol/cellbank/pkg/repo/model"
)

const (
	missingPassage = 999
	freshWindow    = 365 * 24 * time.Hour
)

// Freshness is the number of whole days between the freeze date and one
// year before now; 0 when the tube is undated.
func Freshness(t *model.Tube, now time.Time) float64 {
	if t.FreezeDate == nil {
		return 0
	}
	return math.Floor(t.FreezeDate.Sub(now.Add(-freshWindow)).Hours() / 24)
}

// Score ranks a tube: higher is a better candidate to thaw next.
func Score(t *model.Tube, w Weights, now time.Time) float64 {
	passage := float64(missingPassage)
	if t.Passage.Valid {
		passage = float64(t.Passage.V)
	}
	remain := 0.0
	if t.RemainVials.Valid {
		remain = float64(t.RemainVials.V)
	}
	return w.Passage*passage + w.Vials*remain + w.Freshness*Freshness(t, now)
}
