// internal/member/membercode.go
package member

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// codeSuffixDigits is the width of the zero-padded sequence that follows
// the two-digit year prefix, e.g. "250001" for the first member of 2025.
const codeSuffixDigits = 4

const maxCodeSuffix = 9999

type rowQueryer interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// nextMemberCode produces the next year-scoped member code. It reads the
// maximum numeric suffix among codes sharing the current year's prefix;
// a new year starts over at 1 because the prefix filter excludes every
// earlier year. Must run on the transaction doing the insert so the
// unique constraint on member_code can catch concurrent winners.
func nextMemberCode(ctx context.Context, q rowQueryer, now time.Time) (string, error) {
	prefix := fmt.Sprintf("%02d", now.Year()%100)

	query := `
		SELECT MAX(CAST(SUBSTRING(member_code FROM 3) AS INTEGER))
		FROM member_information
		WHERE member_code LIKE $1
	`
	var maxSuffix sql.NullInt64
	if err := q.QueryRowContext(ctx, query, prefix+"%").Scan(&maxSuffix); err != nil {
		return "", fmt.Errorf("query max member code: %w", err)
	}

	suffix := int64(1)
	if maxSuffix.Valid {
		suffix = maxSuffix.Int64 + 1
	}
	if suffix > maxCodeSuffix {
		return "", fmt.Errorf("member code space for year prefix %s exhausted", prefix)
	}

	return fmt.Sprintf("%s%0*d", prefix, codeSuffixDigits, suffix), nil
}
