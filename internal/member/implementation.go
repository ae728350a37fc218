// internal/member/implementation.go
package member

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// maxCreateAttempts bounds the retry loop for member code conflicts when
// two creates race on the same code.
const maxCreateAttempts = 3

// documentColumns maps recognized upload field names to their
// member_information columns, in insert order.
var documentColumns = []struct {
	field  string
	column string
}{
	{"idPicture", "id_picture"},
	{"applicationForm", "application_form"},
	{"barangayClearance", "barangay_clearance"},
	{"tin", "tin"},
	{"pmes", "pmes"},
}

// service implements the Service interface.
type service struct {
	db     *sql.DB
	tracer trace.Tracer
}

// NewService creates a new member lifecycle service instance.
func NewService(db *sql.DB) Service {
	return &service{
		db:     db,
		tracer: otel.Tracer("sibbap/member"),
	}
}

// Create adds a member and its account as one transaction and returns
// the assigned member code. A member code conflict from a concurrent
// create restarts the whole transaction with a freshly generated code.
func (s *service) Create(ctx context.Context, in CreateInput) (string, error) {
	ctx, span := s.tracer.Start(ctx, "member.create")
	defer span.End()

	if err := in.validate(); err != nil {
		return "", err
	}

	passwordHash, err := hashPassword(in.Password)
	if err != nil {
		return "", err
	}

	memberSince := in.MemberSince
	if memberSince.IsZero() {
		memberSince = time.Now()
	}

	var code string
	for attempt := 1; attempt <= maxCreateAttempts; attempt++ {
		code, err = s.insertMember(ctx, in, passwordHash, memberSince)
		if err == nil {
			span.SetAttributes(
				attribute.String("member.code", code),
				attribute.Int("create.attempts", attempt),
			)
			return code, nil
		}
		if !isUniqueViolation(err) {
			return "", err
		}
		span.AddEvent("member.code.conflict", trace.WithAttributes(
			attribute.Int("attempt", attempt),
		))
	}
	return "", fmt.Errorf("member code contention, gave up after %d attempts: %w", maxCreateAttempts, err)
}

// insertMember writes the member_information and member_account rows as
// one atomic unit. Both rows land or neither does.
func (s *service) insertMember(ctx context.Context, in CreateInput, passwordHash string, memberSince time.Time) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	code, err := nextMemberCode(ctx, tx, time.Now())
	if err != nil {
		return "", err
	}

	memberQuery := `
		INSERT INTO member_information
			(member_code, full_name, age, contact_number, gender, address, shared_capital, member_since,
			 id_picture, application_form, barangay_clearance, tin, pmes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`
	args := []interface{}{
		code, in.FullName, in.Age, in.ContactNumber, in.Gender, in.Address, in.SharedCapital, memberSince,
	}
	for _, dc := range documentColumns {
		args = append(args, documentValue(in.Documents, dc.field))
	}

	var memberID int64
	if err := tx.QueryRowContext(ctx, memberQuery, args...).Scan(&memberID); err != nil {
		return "", fmt.Errorf("insert member: %w", err)
	}

	accountQuery := `
		INSERT INTO member_account (member_id, email, password, account_status)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := tx.ExecContext(ctx, accountQuery, memberID, in.Email, passwordHash, StatusActive); err != nil {
		return "", fmt.Errorf("insert account: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit transaction: %w", err)
	}
	return code, nil
}

// Update rewrites a member's profile and account email, and the password
// hash only when a new password was supplied. Upload references absent
// from the input keep their stored value.
func (s *service) Update(ctx context.Context, id int64, in UpdateInput) error {
	ctx, span := s.tracer.Start(ctx, "member.update",
		trace.WithAttributes(attribute.Int64("member.id", id)),
	)
	defer span.End()

	if err := in.validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	set := []string{
		"full_name = $1",
		"age = $2",
		"contact_number = $3",
		"gender = $4",
		"address = $5",
		"shared_capital = $6",
	}
	args := []interface{}{in.FullName, in.Age, in.ContactNumber, in.Gender, in.Address, in.SharedCapital}
	for _, dc := range documentColumns {
		if v, ok := in.Documents[dc.field]; ok {
			set = append(set, fmt.Sprintf("%s = $%d", dc.column, len(args)+1))
			args = append(args, v)
		}
	}
	args = append(args, id)

	memberQuery := fmt.Sprintf(
		"UPDATE member_information SET %s WHERE id = $%d",
		strings.Join(set, ", "), len(args),
	)
	res, err := tx.ExecContext(ctx, memberQuery, args...)
	if err != nil {
		return fmt.Errorf("update member: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update member: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	if in.Password != "" {
		passwordHash, err := hashPassword(in.Password)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			"UPDATE member_account SET email = $1, password = $2 WHERE member_id = $3",
			in.Email, passwordHash, id,
		)
		if err != nil {
			return fmt.Errorf("update account: %w", err)
		}
	} else {
		_, err = tx.ExecContext(ctx,
			"UPDATE member_account SET email = $1 WHERE member_id = $2",
			in.Email, id,
		)
		if err != nil {
			return fmt.Errorf("update account: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Delete removes the account row and then the member row as one
// transaction. A missing member rolls back everything, including the
// removal of any stray account row.
func (s *service) Delete(ctx context.Context, id int64) error {
	ctx, span := s.tracer.Start(ctx, "member.delete",
		trace.WithAttributes(attribute.Int64("member.id", id)),
	)
	defer span.End()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM member_account WHERE member_id = $1", id); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM member_information WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Get retrieves a member by id with its account email and status joined
// in. The password hash never leaves the store.
func (s *service) Get(ctx context.Context, id int64) (*Member, error) {
	query := `
		SELECT m.id, m.member_code, m.full_name, m.age, m.contact_number, m.gender, m.address,
		       m.shared_capital, m.member_since,
		       m.id_picture, m.application_form, m.barangay_clearance, m.tin, m.pmes,
		       a.email, a.account_status
		FROM member_information m
		JOIN member_account a ON a.member_id = m.id
		WHERE m.id = $1
	`
	m := &Member{}
	var idPicture, applicationForm, barangayClearance, tin, pmes sql.NullString
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&m.ID, &m.MemberCode, &m.FullName, &m.Age, &m.ContactNumber, &m.Gender, &m.Address,
		&m.SharedCapital, &m.MemberSince,
		&idPicture, &applicationForm, &barangayClearance, &tin, &pmes,
		&m.Email, &m.AccountStatus,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get member: %w", err)
	}
	m.IDPicture = idPicture.String
	m.ApplicationForm = applicationForm.String
	m.BarangayClearance = barangayClearance.String
	m.TIN = tin.String
	m.PMES = pmes.String
	return m, nil
}

// List returns all members, or those whose full name matches the given
// name case-insensitively when one is supplied.
func (s *service) List(ctx context.Context, name string) ([]Member, error) {
	query := `
		SELECT id, member_code, full_name, age, contact_number, gender, address,
		       shared_capital, member_since,
		       id_picture, application_form, barangay_clearance, tin, pmes
		FROM member_information
	`
	var args []interface{}
	if name != "" {
		query += " WHERE LOWER(full_name) = LOWER($1)"
		args = append(args, name)
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []Member
	for rows.Next() {
		var m Member
		var idPicture, applicationForm, barangayClearance, tin, pmes sql.NullString
		if err := rows.Scan(
			&m.ID, &m.MemberCode, &m.FullName, &m.Age, &m.ContactNumber, &m.Gender, &m.Address,
			&m.SharedCapital, &m.MemberSince,
			&idPicture, &applicationForm, &barangayClearance, &tin, &pmes,
		); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		m.IDPicture = idPicture.String
		m.ApplicationForm = applicationForm.String
		m.BarangayClearance = barangayClearance.String
		m.TIN = tin.String
		m.PMES = pmes.String
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return members, nil
}

// Count returns the total number of member rows.
func (s *service) Count(ctx context.Context) (int, error) {
	var total int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM member_information").Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count members: %w", err)
	}
	return total, nil
}

// documentValue returns the stored filename for a field, or NULL when
// the field was not uploaded.
func documentValue(docs map[string]string, field string) interface{} {
	if v, ok := docs[field]; ok {
		return v
	}
	return nil
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (the member code race losing side).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
