package charts

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ivanoskov/premium_access_bot/internal/service"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var ErrNoData = errors.New("no data for chart")

// ChartGenerator генерирует графики для отчетов администратора
type ChartGenerator struct{}

// NewChartGenerator создает новый генератор графиков
func NewChartGenerator() *ChartGenerator {
	return &ChartGenerator{}
}

// GenerateStatusChart создает столбчатую диаграмму статусов заявок и оплат
func (g *ChartGenerator) GenerateStatusChart(stats service.Stats) ([]byte, error) {
	if stats.Pending+stats.Approved+stats.Disapproved+stats.Payments == 0 {
		return nil, ErrNoData
	}

	bars := []chart.Value{
		bar("Pending", stats.Pending, drawing.ColorFromHex("f59e0b")),
		bar("Approved", stats.Approved, drawing.ColorFromHex("10b981")),
		bar("Disapproved", stats.Disapproved, drawing.ColorFromHex("ef4444")),
		bar("Stars payments", stats.Payments, drawing.ColorFromHex("4f46e5")),
	}

	graph := chart.BarChart{
		Title:    "Subscriptions",
		Width:    900,
		Height:   500,
		BarWidth: 80,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    50,
				Left:   20,
				Right:  20,
				Bottom: 20,
			},
			FillColor: chart.ColorWhite,
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{
				Min: 0,
				Max: float64(maxCount(stats))*1.1 + 1,
			},
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%.0f", v.(float64))
			},
		},
		Bars: bars,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render status chart: %w", err)
	}

	return buffer.Bytes(), nil
}

func bar(label string, count int, color drawing.Color) chart.Value {
	return chart.Value{
		Label: fmt.Sprintf("%s: %d", label, count),
		Value: float64(count),
		Style: chart.Style{
			FillColor:   color,
			StrokeColor: color,
		},
	}
}

func maxCount(stats service.Stats) int {
	return max(stats.Pending, stats.Approved, stats.Disapproved, stats.Payments)
}
