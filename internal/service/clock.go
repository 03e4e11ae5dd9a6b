package service

import (
	"time"

	"vaccine-reminder/internal/model"
)

// Clock supplies the current instant; tests pin it.
type Clock func() time.Time

// SystemClock reads wall time in loc.
func SystemClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return func() time.Time { return time.Now().In(loc) }
}

func (c Clock) Today() time.Time {
	return model.DateOf(c())
}
