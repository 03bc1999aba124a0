package applog

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOpensLogFileUnderXDGDataHome(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)

	l := Get()
	require.NotEmpty(t, l.Path(), "logger should have opened a file under a writable data dir")
	assert.True(t, strings.HasPrefix(l.Path(), dir))

	l.Printf("hello %s", "world")
	l.Close()

	data, err := os.ReadFile(l.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello world")
}
