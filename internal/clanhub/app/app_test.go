package app

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSqliteDSN(t *testing.T) {
	require.Equal(t,
		"file:clanhub.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)",
		sqliteDSN("clanhub.db"))
}
