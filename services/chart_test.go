package services

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/poker-leaderboard/models"
)

func TestRenderPointsChart(t *testing.T) {
	standing := func(name string, points int64) models.RankedStanding {
		return models.RankedStanding{Standing: models.PlayerStanding{Name: name, Series: "S1", Points: points}}
	}

	tests := []struct {
		name      string
		rows      []models.RankedStanding
		wantWidth int
	}{
		{name: "no standings", rows: nil, wantWidth: chartMinWidth},
		{name: "single player", rows: []models.RankedStanding{standing("Alice", 10)}, wantWidth: chartMinWidth},
		{
			name: "wide board",
			rows: []models.RankedStanding{
				standing("Alice", 10), standing("Bob", 7), standing("Carol", 7),
				standing("Dave", 5), standing("Eve", 3), standing("Frank", 2),
				standing("Grace", 1),
			},
			wantWidth: 7*(chartBarWidth+chartBarSpacing) + 120,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := renderPointsChart("S1", tt.rows)
			require.NoError(t, err)

			img, err := png.Decode(bytes.NewReader(data))
			require.NoError(t, err)
			assert.Equal(t, tt.wantWidth, img.Bounds().Dx())
		})
	}
}
