package storage

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

const (
	CategoryMeeting  = "Meeting"
	CategoryReminder = "Reminder"
	CategoryHoliday  = "Holiday"
)

// DefaultReminderMinutes is applied when ReminderTime is absent or unparseable.
const DefaultReminderMinutes = 30

type Event struct {
	ID           string     `json:"id" db:"id"`
	Title        string     `json:"title" db:"title"`
	StartTime    time.Time  `json:"start" db:"startTime"`
	EndTime      time.Time  `json:"end,omitempty" db:"endTime"`
	Category     string     `json:"category,omitempty" db:"category"`
	Description  string     `json:"description,omitempty" db:"description"`
	ReminderTime string     `json:"reminderTime,omitempty" db:"reminderTime"`
	SharedWith   SharedWith `json:"sharedWith,omitempty" db:"sharedWith"`
	Holiday      bool       `json:"holiday,omitempty" db:"holiday"`
}

// SharedWith keeps the ordered list of user IDs the event was shared with.
// Stored as a JSON text column so the same schema works on every driver.
type SharedWith []string

func (s SharedWith) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (s *SharedWith) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*s = nil
		return nil
	case string:
		return json.Unmarshal([]byte(v), (*[]string)(s))
	case []byte:
		return json.Unmarshal(v, (*[]string)(s))
	default:
		return fmt.Errorf("unsupported type %T for sharedWith", src)
	}
}
