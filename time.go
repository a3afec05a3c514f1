package auth

import "time"

// Clock is the wall clock used for expiry comparisons. Injectable so
// tests can pin issuance and validation instants.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the real wall clock.
func SystemClock() Clock { return systemClock{} }

// FixedClock returns a Clock frozen at the given instant.
func FixedClock(t time.Time) Clock { return fixedClock{t} }

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// IsWithinThresholdPeriod checks if the given time is within the threshold
func IsWithinThresholdPeriod(clock Clock, t time.Time, pattern string) (bool, error) {
	duration, err := time.ParseDuration(pattern)
	if err != nil {
		return false, err
	}

	threshold := clock.Now().Add(-duration)
	if t.After(threshold) {
		return true, nil
	}

	return false, nil
}

// IsOutsideThresholdPeriod is the negation of IsWithinThresholdPeriod
func IsOutsideThresholdPeriod(clock Clock, t time.Time, pattern string) (bool, error) {
	valid, err := IsWithinThresholdPeriod(clock, t, pattern)
	if err != nil {
		return false, err
	}

	return !valid, nil
}
