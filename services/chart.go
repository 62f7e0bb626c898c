package services

import (
	"bytes"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/Dosada05/poker-leaderboard/models"
)

var (
	chartBackground = drawing.ColorFromHex("ffffff")
	chartBar        = drawing.ColorFromHex("b22222")
	chartText       = drawing.ColorFromHex("333333")
)

const (
	chartHeight     = 400
	chartBarWidth   = 40
	chartBarSpacing = 20
	chartMinWidth   = 400
)

// renderPointsChart рисует по столбцу на игрока в порядке таблицы.
func renderPointsChart(title string, rows []models.RankedStanding) ([]byte, error) {
	if len(rows) == 0 {
		return renderNoDataPlaceholder("No standings recorded yet")
	}

	bars := make([]chart.Value, len(rows))
	var top float64
	for i, r := range rows {
		v := float64(r.Standing.Points)
		bars[i] = chart.Value{
			Label: r.Standing.Name,
			Value: v,
			Style: chart.Style{FillColor: chartBar, StrokeColor: chartBar},
		}
		top = math.Max(top, v)
	}

	width := len(rows)*(chartBarWidth+chartBarSpacing) + 120
	if width < chartMinWidth {
		width = chartMinWidth
	}

	graph := chart.BarChart{
		Title:      title,
		TitleStyle: chart.Style{FontColor: chartText},
		Width:      width,
		Height:     chartHeight,
		BarWidth:   chartBarWidth,
		BarSpacing: chartBarSpacing,
		Background: chart.Style{
			FillColor: chartBackground,
			Padding:   chart.Box{Top: 40, Left: 10, Right: 10, Bottom: 10},
		},
		Canvas: chart.Style{FillColor: chartBackground},
		XAxis:  chart.Style{FontColor: chartText},
		YAxis: chart.YAxis{
			Style: chart.Style{FontColor: chartText},
			// Явный диапазон: для одного игрока авто-диапазон вырождается в ноль.
			Range: &chart.ContinuousRange{Min: 0, Max: math.Ceil(top * 1.1)},
		},
		Bars: bars,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// renderNoDataPlaceholder рисует пустую картинку с подписью. go-chart не
// рендерит график без видимой серии, поэтому добавляем прозрачную линию.
func renderNoDataPlaceholder(msg string) ([]byte, error) {
	graph := chart.Chart{
		Width:  chartMinWidth,
		Height: 200,
		Background: chart.Style{
			FillColor: chartBackground,
		},
		Canvas: chart.Style{
			FillColor: chartBackground,
		},
		XAxis: chart.XAxis{Style: chart.Style{Hidden: true}},
		YAxis: chart.YAxis{Style: chart.Style{Hidden: true}},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Style:   chart.Style{StrokeColor: drawing.ColorTransparent, StrokeWidth: 1},
				XValues: []float64{0, 1},
				YValues: []float64{0, 1},
			},
		},
		Elements: []chart.Renderable{
			func(r chart.Renderer, cb chart.Box, chartDefaults chart.Style) {
				r.SetFont(chartDefaults.GetFont())
				r.SetFontColor(chartText)
				r.SetFontSize(12.0)
				tb := r.MeasureText(msg)
				x := (cb.Width() - tb.Width()) / 2
				y := (cb.Height() + tb.Height()) / 2
				r.Text(msg, x, y)
			},
		},
	}
	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
