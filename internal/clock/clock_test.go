package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTodayTruncatesToMidnight(t *testing.T) {
	c := NewFakeClock(time.Date(2025, time.March, 14, 17, 45, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC), Today(c))

	c.Advance(8 * time.Hour)
	assert.Equal(t, time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC), Today(c))
}
