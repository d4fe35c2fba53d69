package output

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryantking/repotools/internal/forge"
)

func captureStderr(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := Stderr
	Stderr = &buf
	t.Cleanup(func() { Stderr = prev })
	return &buf
}

func TestError(t *testing.T) {
	buf := captureStderr(t)

	Error(nil)
	assert.Empty(t, buf.String())

	Error(fmt.Errorf("get file: %w", forge.ErrRateLimited))
	assert.Equal(t, "Error: get file: rate limited (forge rate limit reached, retry later)\n", buf.String())
}

func TestErrorf(t *testing.T) {
	buf := captureStderr(t)

	Errorf("bad %s", "thing")
	assert.Equal(t, "Error: bad thing\n", buf.String())
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, map[string]string{"path": "a<b>.go"}))
	assert.Equal(t, "{\n  \"path\": \"a<b>.go\"\n}\n", buf.String())

	err := WriteJSON(&buf, func() {})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to marshal JSON")
	assert.False(t, errors.Is(err, forge.ErrNotFound))
}
