package migrations

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSource(t *testing.T) {
	src, err := Source()
	require.NoError(t, err)
	defer src.Close()

	version, err := src.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)

	up, identifier, err := src.ReadUp(version)
	require.NoError(t, err)
	defer up.Close()
	assert.Equal(t, "create_customers_table", identifier)

	body, err := io.ReadAll(up)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "CREATE TABLE IF NOT EXISTS customers"))

	down, _, err := src.ReadDown(version)
	require.NoError(t, err)
	defer down.Close()
}

func TestNewRejectsUnknownDatabaseScheme(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := New("unknown://localhost/customers", logger)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create migrate instance")
}
