package utils

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafelyRunRecoversPanic(t *testing.T) {
	err := SafelyRun(func() { panic(errors.New("bad row")) })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad row")

	err = SafelyRun(func() { panic("plain") })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "plain")

	assert.NoError(t, SafelyRun(func() {}))
}

func TestSafelyGoReportsError(t *testing.T) {
	done := make(chan error, 1)
	SafelyGo(func() { panic("worker") }, func(err error) { done <- err })
	err := <-done
	assert.Contains(t, err.Error(), "worker")
}

func TestFilterSlice(t *testing.T) {
	out := FilterSlice([]string{"1", "x", "3"}, func(s string) (int, bool) {
		n, err := strconv.Atoi(s)
		return n, err == nil
	})
	assert.Equal(t, []int{1, 3}, out)
}

func TestDistinct(t *testing.T) {
	assert.Equal(t, []string{"HeLa", "A549"}, Distinct([]string{"HeLa", "A549", "HeLa"}))
}
