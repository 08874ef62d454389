package policy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConnectionRetry(t *testing.T) {
	r := DefaultConnectionRetry()

	assert.Equal(t, 5, r.MaxRetries)
	assert.Equal(t, time.Second, r.BaseDelay)
	assert.Equal(t, 30*time.Second, r.MaxDelay)
	assert.Equal(t, time.Duration(0), r.Timeout)
}

func TestDefaultOperationRetry(t *testing.T) {
	r := DefaultOperationRetry()

	assert.Equal(t, 3, r.MaxRetries)
	assert.Equal(t, time.Second, r.BaseDelay)
	assert.Equal(t, 10*time.Second, r.MaxDelay)
	assert.Equal(t, 30*time.Second, r.Timeout)
}

func TestRetry_Delay_ConnectionSchedule(t *testing.T) {
	r := DefaultConnectionRetry()

	want := []time.Duration{
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		16 * time.Second,
	}
	for attempt, expected := range want {
		assert.Equal(t, expected, r.Delay(attempt), "attempt %d", attempt)
	}
}

func TestRetry_Delay_CapsAtMaxDelay(t *testing.T) {
	r := Retry{MaxRetries: 10, BaseDelay: time.Second, MaxDelay: 10 * time.Second}

	assert.Equal(t, 8*time.Second, r.Delay(3))
	assert.Equal(t, 10*time.Second, r.Delay(4))
	assert.Equal(t, 10*time.Second, r.Delay(5))
	assert.Equal(t, 10*time.Second, r.Delay(100))
}

func TestRetry_Delay_NegativeAttempt(t *testing.T) {
	r := DefaultOperationRetry()

	assert.Equal(t, time.Second, r.Delay(-1))
	assert.Equal(t, time.Second, r.Delay(0))
}
