package inventory

import (
	"testing"
	"time"

	"github.com/scienceol/cellbank/pkg/repo/model"
	"github.com/stretchr/testify/assert"
)

func TestScore(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	w := Weights{Passage: -1, Vials: 1}

	assert.Equal(t, -999.0, Score(&model.Tube{}, w, now))
	assert.Equal(t, 1.0, Score(&model.Tube{Passage: model.IntOf(2), RemainVials: model.IntOf(3)}, w, now))

	frozen := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	tube := &model.Tube{Passage: model.IntOf(2), RemainVials: model.IntOf(3), FreezeDate: &frozen}
	// half a day before the one-year mark rounds down
	assert.Equal(t, -1.0, Freshness(tube, now))
	assert.Equal(t, 0.0, Score(tube, Weights{Passage: -1, Vials: 1, Freshness: 1}, now))

	assert.Equal(t, 0.0, Freshness(&model.Tube{}, now))
}
