package database

import (
	"time"

	"github.com/lib/pq"
)

// pqStringArray adapts a []string to the TEXT[] binding lib/pq expects;
// a nil slice binds as an empty array rather than NULL, matching every
// TEXT[] column's NOT NULL DEFAULT '{}' in the schema.
func pqStringArray(values []string) interface{} {
	if values == nil {
		values = []string{}
	}
	return pq.Array(values)
}

// pqDateOffsets builds the date[] bind value for the scheduler's horizon
// window: day+0, day+1, day+3, day+7 and whatever else the job asks for.
func pqDateOffsets(day time.Time, horizonDays []int) interface{} {
	dates := make([]time.Time, 0, len(horizonDays))
	for _, offset := range horizonDays {
		dates = append(dates, day.AddDate(0, 0, offset))
	}
	return pq.Array(dates)
}
