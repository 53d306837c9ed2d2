// Package clock abstracts time so recording works with both real and virtual time.
package clock

import "time"

// Clock supplies the current time to the recorder and the host loop.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
	// Since returns the duration elapsed since t.
	Since(t time.Time) time.Duration
}

// Real delegates to the standard time package.
type Real struct{}

// NewReal returns a clock backed by time.Now.
func NewReal() *Real {
	return &Real{}
}

func (c *Real) Now() time.Time {
	return time.Now()
}

func (c *Real) Since(t time.Time) time.Duration {
	return time.Since(t)
}
