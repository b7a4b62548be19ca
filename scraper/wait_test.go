package scraper

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitWithPolicy_ExhaustsRetriesWithFixedBackoff(t *testing.T) {
	opts := WaitOptions{
		Timeout:     100 * time.Millisecond,
		MaxRetries:  2,
		Description: "product tiles",
	}

	attempts := 0
	notFound := errors.New("element not found")
	start := time.Now()
	err := waitWithPolicy(opts, func(timeout time.Duration) error {
		attempts++
		time.Sleep(timeout) // simulate a selector that never appears
		return notFound
	})
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.Equal(t, 3, attempts, "maxRetries=2 means 3 attempts")

	// 3 attempts of ~100ms plus 2 backoffs of 1s between them. The backoff
	// never runs after the final attempt.
	assert.GreaterOrEqual(t, elapsed, 2300*time.Millisecond)
	assert.Less(t, elapsed, 4*time.Second)

	var serr *SelectorError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, 3, serr.Attempts)
	assert.Equal(t, "product tiles", serr.Description)
	assert.ErrorIs(t, err, notFound)
}

func TestWaitWithPolicy_SucceedsMidway(t *testing.T) {
	attempts := 0
	err := waitWithPolicy(WaitOptions{Timeout: 10 * time.Millisecond, MaxRetries: 3}, func(time.Duration) error {
		attempts++
		if attempts < 2 {
			return errors.New("not yet")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestWaitWithPolicy_ZeroRetriesSingleAttempt(t *testing.T) {
	attempts := 0
	start := time.Now()
	err := waitWithPolicy(WaitOptions{Timeout: 10 * time.Millisecond}, func(time.Duration) error {
		attempts++
		return errors.New("missing")
	})

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
	// No backoff after the last (only) attempt.
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestSelectorError_Message(t *testing.T) {
	err := &SelectorError{Selector: ".product", Description: "search results", Attempts: 3}
	assert.Contains(t, err.Error(), ".product")
	assert.Contains(t, err.Error(), "search results")
	assert.Contains(t, err.Error(), "3 attempts")
}
