package workbook

import (
	"strconv"
	"strings"
	"time"

	"credit-service/internal/config"
	"credit-service/internal/domain"
)

// Datas em texto são lidas dia-primeiro, como nas planilhas brasileiras.
var dayFirstLayouts = []string{
	"2/1/2006",
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"2-1-2006",
	"2.1.2006",
	"2/1/06",
}

// DateParser reads due dates from cells. Dates whose year falls outside
// [MinYear, MaxYear] are treated as absent.
type DateParser struct {
	MinYear int
	MaxYear int
}

// NewDateParser builds a parser bounded by the configured years.
func NewDateParser(cfg config.DateConfig) DateParser {
	return DateParser{MinYear: cfg.MinYear, MaxYear: cfg.MaxYear}
}

// Parse returns the calendar date held by the cell, at midnight UTC.
func (p DateParser) Parse(cell domain.Cell) (time.Time, bool) {
	switch cell.Kind {
	case domain.CellNumber:
		return p.bounded(excelSerialToDate(cell.Number))
	case domain.CellText:
		return p.parseText(cell.Text)
	default:
		return time.Time{}, false
	}
}

func (p DateParser) parseText(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dayFirstLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return p.bounded(t)
		}
	}
	if len(s) >= 10 {
		if t, err := time.Parse("2006-01-02", s[:10]); err == nil {
			return p.bounded(t)
		}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return p.bounded(excelSerialToDate(f))
	}
	return time.Time{}, false
}

func (p DateParser) bounded(t time.Time) (time.Time, bool) {
	if p.MinYear != 0 && t.Year() < p.MinYear {
		return time.Time{}, false
	}
	if p.MaxYear != 0 && t.Year() > p.MaxYear {
		return time.Time{}, false
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
}

func excelSerialToDate(serial float64) time.Time {
	// base Excel serial -> 1899-12-30
	base := time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
	frac := serial - float64(int64(serial))
	duration := time.Duration(int64(serial)*24) * time.Hour
	duration += time.Duration(frac * 24 * float64(time.Hour))
	return base.Add(duration)
}
