package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runWithTimeout falla si el menú no termina por sí solo
func runWithTimeout(t *testing.T, input string) string {
	t.Helper()
	var out bytes.Buffer
	done := make(chan struct{})
	go func() {
		run(strings.NewReader(input), &out)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		require.FailNow(t, "menu did not return after input was exhausted")
	}
	return out.String()
}

func TestRun_exitsOnClosedInput(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		invalidSeen int
	}{
		{"empty input", "", 0},
		{"invalid option then eof", "9\n", 1},
		{"option without newline", "9", 1},
		{"eof while asking for stop", "2\n", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := runWithTimeout(t, tt.input)
			assert.Equal(t, tt.invalidSeen, strings.Count(out, "Invalid option"))
			assert.NotContains(t, out, "Bye")
		})
	}
}

func TestRun_exitOption(t *testing.T) {
	out := runWithTimeout(t, "3\n9\n")
	assert.Contains(t, out, "Bye")
	assert.NotContains(t, out, "Invalid option")
}

func TestRun_rejectsInvalidStop(t *testing.T) {
	out := runWithTimeout(t, "2\nabc\n")
	assert.Contains(t, out, "stop number must be a positive integer")
}
