package echoapi

import (
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fitsenior/backend/core"
	"github.com/fitsenior/backend/core/attendance"
	"github.com/fitsenior/backend/core/class"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

// Bind parses `?ordering=a,-b`: a leading "-" means descending.
func (ord *Ordering) Bind(ctx echo.Context) {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return
	}

	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field == "" {
			continue
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// classQuery holds the query params of the class search.
type classQuery struct {
	Location       string `query:"location"`
	Category       string `query:"category"`
	Level          string `query:"level"`
	ProfessionalID string `query:"professional_id"`
	Search         string `query:"search"`
	Available      string `query:"available"`
}

func (q classQuery) filter(ord Ordering) class.QueryFilter {
	available, _ := strconv.ParseBool(q.Available)
	return class.QueryFilter{
		Location:       core.CleanString(q.Location),
		Category:       core.CleanString(q.Category),
		Level:          core.CleanString(q.Level, true /* lower */),
		ProfessionalID: core.CleanString(q.ProfessionalID),
		Search:         core.CleanString(q.Search),
		Available:      available,
		Ordering:       ord.Orderings,
	}
}

// parseDate accepts YYYY-MM-DD and RFC 3339 timestamps; the result is truncated to the day.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(attendance.DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, errInvalidDate
	}
	return core.Date(t), nil
}

// dateQueryParam returns nil when the param is absent.
func dateQueryParam(ctx echo.Context, name string) (*time.Time, error) {
	val := ctx.QueryParam(name)
	if val == "" {
		return nil, nil
	}
	t, err := parseDate(val)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// rollCallRequest accepts the roll call date as a plain day.
type rollCallRequest struct {
	Date    string            `json:"date"`
	Records []attendance.Mark `json:"records"`
}

func (r rollCallRequest) rollCall() (attendance.RollCall, error) {
	if strings.TrimSpace(r.Date) == "" {
		return attendance.RollCall{}, core.NewFieldError("date", "this field is required")
	}
	date, err := parseDate(r.Date)
	if err != nil {
		return attendance.RollCall{}, core.NewFieldError("date", "invalid date, expected YYYY-MM-DD")
	}
	return attendance.RollCall{Date: date, Records: r.Records}, nil
}
