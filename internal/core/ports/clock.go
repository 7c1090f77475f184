package ports

import "time"

// Clock is the source of the current time.
type Clock interface {
	Now() time.Time
}
