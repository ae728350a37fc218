// internal/member/membercode_test.go
package member

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

const maxCodeQuery = `SELECT MAX(CAST(SUBSTRING(member_code FROM 3) AS INTEGER))`

func expectMaxCode(mock sqlmock.Sqlmock, prefix string, max interface{}) {
	mock.ExpectQuery(regexp.QuoteMeta(maxCodeQuery)).
		WithArgs(prefix + "%").
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(max))
}

func TestNextMemberCode_FirstOfYear(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	expectMaxCode(mock, "25", nil)

	code, err := nextMemberCode(context.Background(), db, now)
	require.NoError(t, err)
	assert.Equal(t, "250001", code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNextMemberCode_IncrementsMax(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2025, time.December, 31, 23, 59, 0, 0, time.UTC)
	expectMaxCode(mock, "25", 41)

	code, err := nextMemberCode(context.Background(), db, now)
	require.NoError(t, err)
	assert.Equal(t, "250042", code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNextMemberCode_SuffixExhausted(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	expectMaxCode(mock, "25", 9999)

	_, err = nextMemberCode(context.Background(), db, now)
	assert.Error(t, err)
}

func TestNextMemberCode_QueryFailureIsFatal(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(maxCodeQuery)).
		WillReturnError(fmt.Errorf("connection reset"))

	_, err = nextMemberCode(context.Background(), db, time.Now())
	assert.Error(t, err)
}

// TestNextMemberCode_Properties checks the code shape over the whole
// input space: six characters, two-digit year prefix, zero-padded
// suffix exactly one above the stored maximum.
func TestNextMemberCode_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		year := rapid.IntRange(2000, 2099).Draw(t, "year")
		max := rapid.IntRange(0, 9998).Draw(t, "max")

		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		now := time.Date(year, time.July, 1, 0, 0, 0, 0, time.UTC)
		prefix := fmt.Sprintf("%02d", year%100)
		if max == 0 {
			expectMaxCode(mock, prefix, nil)
		} else {
			expectMaxCode(mock, prefix, max)
		}

		code, err := nextMemberCode(context.Background(), db, now)
		require.NoError(t, err)

		require.Len(t, code, 6)
		require.Equal(t, prefix, code[:2])
		require.Equal(t, fmt.Sprintf("%04d", max+1), code[2:])
	})
}
