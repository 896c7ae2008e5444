package timeutil

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// UTCTime is a timestamp kept in UTC. Besides native time values it reads the text timestamps
// written by older versions of the site's database.
type UTCTime time.Time

var textLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	time.DateTime,
	time.DateOnly,
}

func NowUTC() UTCTime {
	return UTCTime(time.Now().UTC())
}

func (t UTCTime) UTC() time.Time   { return time.Time(t).UTC() }
func (t UTCTime) Local() time.Time { return time.Time(t).Local() }
func (t UTCTime) IsZero() bool     { return time.Time(t).IsZero() }

func (t UTCTime) Add(d time.Duration) UTCTime {
	return UTCTime(time.Time(t).Add(d))
}

func (t UTCTime) Value() (driver.Value, error) {
	return t.UTC(), nil
}

func parseText(s string) (time.Time, error) {
	for _, layout := range textLayouts {
		if v, err := time.Parse(layout, s); err == nil {
			return v, nil
		}
	}
	return time.Time{}, fmt.Errorf("unknown time format %q", s)
}

func (t *UTCTime) Scan(value any) error {
	var v time.Time
	switch value := value.(type) {
	case nil:
		*t = UTCTime{}
		return nil
	case time.Time:
		v = value
	case string:
		p, err := parseText(value)
		if err != nil {
			return err
		}
		v = p
	case []byte:
		p, err := parseText(string(value))
		if err != nil {
			return err
		}
		v = p
	case int64:
		v = time.Unix(value, 0)
	default:
		return fmt.Errorf("cannot scan %T into time", value)
	}
	*t = UTCTime(v.UTC())
	return nil
}
