package util

import (
	"time"
)

// SecondsSinceMidnight returns the wall clock of t as seconds past local midnight.
func SecondsSinceMidnight(t time.Time) int {
	return t.Hour()*3600 + t.Minute()*60 + t.Second()
}
