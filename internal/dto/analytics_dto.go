package dto

import (
	"github.com/c50bossio/6fb-workbook-api/internal/progress"
)

// AnalyticsQuery bounds an analytics request. Dates are inclusive and
// interpreted as UTC calendar days.
type AnalyticsQuery struct {
	Start string `query:"start" validate:"required,datetime=2006-01-02"`
	End   string `query:"end" validate:"required,datetime=2006-01-02"`
}

// AnalyticsResponse wraps the engine aggregate together with the streak.
type AnalyticsResponse struct {
	Analytics progress.Analytics `json:"analytics"`
	Streak    progress.Streak    `json:"streak"`
}
