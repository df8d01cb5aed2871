package analytics

import (
	"time"

	"storefront-api/responses"

	"github.com/gofiber/fiber/v2"
)

const defaultRangeDays = 30

type Controller struct {
	svc *Service
	now func() time.Time
}

func NewController(svc *Service) *Controller {
	return &Controller{svc: svc, now: time.Now}
}

// dateRange reads from and to as calendar days; to covers its whole day.
// Without parameters the last 30 days are used.
func (ctl *Controller) dateRange(c *fiber.Ctx) (time.Time, time.Time, error) {
	today := ctl.now().UTC()
	to := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	from := to.AddDate(0, 0, -(defaultRangeDays - 1))

	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(dayLayout, raw)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from = t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse(dayLayout, raw)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to = t
	}
	return from, to.Add(24*time.Hour - time.Nanosecond), nil
}

func (ctl *Controller) GetOverview(c *fiber.Ctx) error {
	from, to, err := ctl.dateRange(c)
	if err != nil {
		return responses.BadRequest(c, "Dates must look like 2006-01-02")
	}
	ov, err := ctl.svc.Overview(c.UserContext(), from, to)
	if err != nil {
		return responses.Error(c, err)
	}
	return responses.OK(c, "Analytics fetched successfully", &fiber.Map{"overview": ov})
}
