package holiday

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

type CreateHolidayDTO struct {
	Name      string `json:"name"`
	Date      string `json:"date"`
	Recurring bool   `json:"recurring"`

	parsedDate time.Time
}

func (d *CreateHolidayDTO) Validate() error {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return fmt.Errorf("name is required")
	}

	parsed, err := time.Parse(dateLayout, d.Date)
	if err != nil {
		return fmt.Errorf("date must be in YYYY-MM-DD format")
	}
	d.parsedDate = parsed
	return nil
}

func (d *CreateHolidayDTO) ParsedDate() time.Time {
	return d.parsedDate
}

type UpdateHolidayDTO struct {
	Name      string `json:"name"`
	Date      string `json:"date"`
	Recurring bool   `json:"recurring"`
	IsActive  *bool  `json:"is_active"`

	parsedDate time.Time
}

func (d *UpdateHolidayDTO) Validate() error {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return fmt.Errorf("name is required")
	}

	parsed, err := time.Parse(dateLayout, d.Date)
	if err != nil {
		return fmt.Errorf("date must be in YYYY-MM-DD format")
	}
	d.parsedDate = parsed
	return nil
}

func (d *UpdateHolidayDTO) ParsedDate() time.Time {
	return d.parsedDate
}

type HolidaysResponse struct {
	Holidays []*Holiday `json:"holidays"`
}
