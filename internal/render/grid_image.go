package render

import (
	"bytes"
	"fmt"
	"image/color"
	"time"

	"github.com/academiapadel/backend/internal/model"
	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"
)

// Layout constants
const (
	imageWidth      = 1200
	headerHeight    = 70
	footerHeight    = 60
	leftLabelsWidth = 90
	cellHeight      = 56
	cellPaddingX    = 6.0
	cellPaddingY    = 4.0
	cellRadius      = 5.0
)

// Color scheme
var (
	bgColor        = color.RGBA{245, 246, 248, 255}
	textColor      = color.RGBA{80, 85, 90, 220}
	timeLabelColor = color.RGBA{110, 115, 120, 200}
	gridLineColor  = color.NRGBA{150, 150, 150, 255}

	cellAvailableColor = color.RGBA{133, 193, 85, 220}
	cellOpenColor      = color.RGBA{255, 214, 102, 240}
	cellBookedColor    = color.RGBA{255, 182, 193, 255}
	cellTextColor      = color.RGBA{20, 24, 28, 230}

	legendTextColor = color.RGBA{70, 74, 78, 220}
)

// GenerateDayGridImage renders the court availability grid of one date as a
// PNG: one column per court, one row per canonical time slot.
func GenerateDayGridImage(grid *model.DayGrid, courts []*model.Court) ([]byte, error) {
	if len(courts) == 0 {
		return nil, fmt.Errorf("no courts to render")
	}

	imageHeight := headerHeight + len(grid.TimeSlots)*cellHeight + footerHeight
	columnWidth := (imageWidth - leftLabelsWidth) / len(courts)

	dc := createCanvas(imageWidth, imageHeight)

	drawHeader(dc, grid.Date)
	drawCourtHeaders(dc, courts, columnWidth)
	drawTimeLabels(dc, grid.TimeSlots)
	drawCells(dc, grid, courts, columnWidth)
	drawGridLines(dc, len(courts), len(grid.TimeSlots), columnWidth)
	drawLegend(dc, imageHeight)

	return encodeImage(dc)
}

func createCanvas(w, h int) *gg.Context {
	dc := gg.NewContext(w, h)
	dc.SetFontFace(basicfont.Face7x13)
	dc.SetColor(bgColor)
	dc.Clear()
	return dc
}

func drawHeader(dc *gg.Context, date time.Time) {
	title := fmt.Sprintf("%s %02d de %s", weekdaySpanish(date.Weekday()), date.Day(), monthSpanish(date.Month()))
	dc.SetColor(textColor)
	dc.DrawStringAnchored(title, float64(imageWidth)/2, float64(headerHeight)/3, 0.5, 0.5)
}

func drawCourtHeaders(dc *gg.Context, courts []*model.Court, columnWidth int) {
	dc.SetColor(textColor)
	for i, court := range courts {
		x := float64(leftLabelsWidth + i*columnWidth + columnWidth/2)
		dc.DrawStringAnchored(court.Name, x, float64(headerHeight)-12, 0.5, 0.5)
	}
}

func drawTimeLabels(dc *gg.Context, slots []string) {
	dc.SetColor(timeLabelColor)
	for i, slot := range slots {
		y := float64(headerHeight + i*cellHeight + cellHeight/2)
		dc.DrawStringAnchored(slot, float64(leftLabelsWidth)-10, y, 1, 0.5)
	}
}

func drawCells(dc *gg.Context, grid *model.DayGrid, courts []*model.Court, columnWidth int) {
	rowIndex := make(map[string]int, len(grid.TimeSlots))
	for i, slot := range grid.TimeSlots {
		rowIndex[slot] = i
	}
	colIndex := make(map[string]int, len(courts))
	for i, court := range courts {
		colIndex[court.ID] = i
	}

	for _, cell := range grid.Cells {
		col, ok := colIndex[cell.CourtID]
		if !ok {
			continue
		}
		row, ok := rowIndex[cell.Time]
		if !ok {
			continue
		}

		x := float64(leftLabelsWidth+col*columnWidth) + cellPaddingX
		y := float64(headerHeight+row*cellHeight) + cellPaddingY
		w := float64(columnWidth) - cellPaddingX*2
		h := float64(cellHeight) - cellPaddingY*2

		dc.SetColor(cellColor(cell.Status))
		dc.DrawRoundedRectangle(x, y, w, h, cellRadius)
		dc.Fill()

		dc.SetColor(cellTextColor)
		dc.DrawStringAnchored(cellLabel(cell), x+w/2, y+h/2, 0.5, 0.5)
	}
}

func cellColor(status model.CourtSlotStatus) color.RGBA {
	switch status {
	case model.CourtSlotOpen:
		return cellOpenColor
	case model.CourtSlotBooked:
		return cellBookedColor
	default:
		return cellAvailableColor
	}
}

func cellLabel(cell model.GridCell) string {
	switch cell.Status {
	case model.CourtSlotOpen:
		return fmt.Sprintf("Abierto %d/%d", cell.CurrentPlayers, cell.MaxPlayers)
	case model.CourtSlotBooked:
		return "Reservado"
	default:
		return "Libre"
	}
}

func drawGridLines(dc *gg.Context, numCourts, numSlots, columnWidth int) {
	dc.SetLineWidth(0.3)
	dc.SetColor(gridLineColor)

	bottom := float64(headerHeight + numSlots*cellHeight)
	for i := 0; i <= numSlots; i++ {
		y := float64(headerHeight + i*cellHeight)
		dc.DrawLine(float64(leftLabelsWidth), y, float64(leftLabelsWidth+numCourts*columnWidth), y)
		dc.Stroke()
	}
	for i := 0; i <= numCourts; i++ {
		x := float64(leftLabelsWidth + i*columnWidth)
		dc.DrawLine(x, float64(headerHeight), x, bottom)
		dc.Stroke()
	}
}

func drawLegend(dc *gg.Context, imageHeight int) {
	legendItems := []struct {
		Label string
		Clr   color.Color
	}{
		{"Libre", cellAvailableColor},
		{"Partido abierto", cellOpenColor},
		{"Reservado", cellBookedColor},
	}

	boxW := 18.0
	boxH := 12.0
	x := float64(leftLabelsWidth)
	y := float64(imageHeight-footerHeight) + 20

	for _, item := range legendItems {
		dc.SetColor(item.Clr)
		dc.DrawRoundedRectangle(x, y, boxW, boxH, 3)
		dc.Fill()

		dc.SetColor(legendTextColor)
		dc.DrawStringAnchored(item.Label, x+boxW+8, y+boxH/2, 0, 0.5)

		tw, _ := dc.MeasureString(item.Label)
		x += boxW + 8 + tw + 30
	}
}

func encodeImage(dc *gg.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func weekdaySpanish(weekday time.Weekday) string {
	weekdays := map[time.Weekday]string{
		time.Monday:    "Lunes",
		time.Tuesday:   "Martes",
		time.Wednesday: "Miercoles",
		time.Thursday:  "Jueves",
		time.Friday:    "Viernes",
		time.Saturday:  "Sabado",
		time.Sunday:    "Domingo",
	}
	return weekdays[weekday]
}

func monthSpanish(month time.Month) string {
	months := map[time.Month]string{
		time.January:   "Enero",
		time.February:  "Febrero",
		time.March:     "Marzo",
		time.April:     "Abril",
		time.May:       "Mayo",
		time.June:      "Junio",
		time.July:      "Julio",
		time.August:    "Agosto",
		time.September: "Septiembre",
		time.October:   "Octubre",
		time.November:  "Noviembre",
		time.December:  "Diciembre",
	}
	return months[month]
}
