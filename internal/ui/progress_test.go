package ui

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewSpinner_Disabled(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	s := NewSpinner(&buf, "Searching", false)
	assert.Nil(t, s)

	// nil spinner is safe to stop
	s.Stop()
	assert.Empty(t, buf.String())
}

func TestNewSpinner_Enabled(t *testing.T) {
	t.Parallel()

	var buf syncBuffer
	s := NewSpinner(&buf, "Searching flatpak", true)
	assert.NotNil(t, s)

	time.Sleep(150 * time.Millisecond)
	s.Stop()
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}
