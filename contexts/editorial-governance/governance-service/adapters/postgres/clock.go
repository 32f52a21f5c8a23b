package postgresadapter

import "time"

// SystemClock is the runtime clock used outside tests.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
