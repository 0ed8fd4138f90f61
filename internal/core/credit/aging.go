package credit

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// DaysOverdue counts calendar days between the due date and the date of now in
// its own location. A missing due date, a date not yet reached, or a balance
// <= 0 all yield zero.
func DaysOverdue(dueDate *time.Time, balance decimal.Decimal, now time.Time) int {
	if !balance.IsPositive() || dueDate == nil {
		return 0
	}
	// datas de calendário em UTC: horário de verão não encurta o dia
	due := time.Date(dueDate.Year(), dueDate.Month(), dueDate.Day(), 0, 0, 0, 0, time.UTC)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	days := math.Floor(today.Sub(due).Hours() / 24)
	if days < 0 {
		return 0
	}
	return int(days)
}
