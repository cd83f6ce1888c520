package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/InkyWorld/goit-web-hw-14/internal/core/domain"
	"github.com/InkyWorld/goit-web-hw-14/internal/core/port"
)

const contactsTable = "contacts"

var contactColumns = []string{
	"id",
	"name",
	"surname",
	"email",
	"phone",
	"birth_date",
	"additional_info",
	"user_id",
	"created_at",
	"updated_at",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContactRepository implements port.ContactRepository. Every statement is
// constrained by user_id.
type ContactRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

var _ port.ContactRepository = (*ContactRepository)(nil)

// NewContactRepository wires a PostgreSQL-backed contact repository.
func NewContactRepository(exec pgExecutor) *ContactRepository {
	return &ContactRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithTx returns a repository instance operating within the supplied transaction.
func (r *ContactRepository) WithTx(tx pgx.Tx) *ContactRepository {
	if tx == nil {
		return r
	}
	return &ContactRepository{exec: tx, builder: r.builder}
}

func ownedBy(ownerID, id int64) squirrel.And {
	return squirrel.And{squirrel.Eq{"user_id": ownerID}, squirrel.Eq{"id": id}}
}

// GetByID returns the contact only when ownerID owns it.
func (r *ContactRepository) GetByID(ctx context.Context, ownerID, id int64) (*domain.Contact, error) {
	stmt, args, err := r.builder.Select(contactColumns...).
		From(contactsTable).
		Where(ownedBy(ownerID, id)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select contact sql: %w", err)
	}

	contact, err := scanContact(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		return nil, mapError("select contact", err)
	}
	return contact, nil
}

// List returns one page of the owner's contacts ordered by id.
func (r *ContactRepository) List(ctx context.Context, ownerID int64, page domain.Page) ([]domain.Contact, error) {
	query := r.builder.Select(contactColumns...).
		From(contactsTable).
		Where(squirrel.Eq{"user_id": ownerID}).
		OrderBy("id").
		Offset(uint64(page.Offset))
	if page.Limit > 0 {
		query = query.Limit(uint64(page.Limit))
	}

	return r.queryContacts(ctx, "list contacts", query)
}

// Search matches every provided filter term case-insensitively as a substring.
func (r *ContactRepository) Search(ctx context.Context, ownerID int64, filter domain.ContactFilter) ([]domain.Contact, error) {
	where := squirrel.And{squirrel.Eq{"user_id": ownerID}}
	if filter = filter.Trim(); !filter.Empty() {
		terms := []struct {
			column string
			value  string
		}{
			{"name", filter.Name},
			{"surname", filter.Surname},
			{"email", filter.Email},
		}
		for _, term := range terms {
			if term.value != "" {
				where = append(where, squirrel.ILike{term.column: "%" + likeEscaper.Replace(term.value) + "%"})
			}
		}
	}

	query := r.builder.Select(contactColumns...).
		From(contactsTable).
		Where(where).
		OrderBy("id")

	return r.queryContacts(ctx, "search contacts", query)
}

// ListBirthdays returns the owner's contacts whose birthday falls in window.
func (r *ContactRepository) ListBirthdays(ctx context.Context, ownerID int64, window domain.BirthdayWindow) ([]domain.Contact, error) {
	query := r.builder.Select(contactColumns...).
		From(contactsTable).
		Where(squirrel.And{squirrel.Eq{"user_id": ownerID}, birthdayPredicate(window)}).
		OrderBy("EXTRACT(MONTH FROM birth_date)", "EXTRACT(DAY FROM birth_date)", "id")

	return r.queryContacts(ctx, "list birthdays", query)
}

// birthdayPredicate renders the same month/day comparison as BirthdayWindow.Matches.
func birthdayPredicate(w domain.BirthdayWindow) squirrel.Sqlizer {
	const (
		month = "EXTRACT(MONTH FROM birth_date)"
		day   = "EXTRACT(DAY FROM birth_date)"
	)
	if !w.Wraps() {
		return squirrel.And{
			squirrel.Expr(month+" = ?", int(w.Today.Month())),
			squirrel.Expr(day+" BETWEEN ? AND ?", w.Today.Day(), w.Next.Day()),
		}
	}
	return squirrel.Or{
		squirrel.And{
			squirrel.Expr(month+" = ?", int(w.Today.Month())),
			squirrel.Expr(day+" BETWEEN ? AND ?", w.Today.Day(), w.LastDayOfMonth),
		},
		squirrel.And{
			squirrel.Expr(month+" = ?", int(w.Next.Month())),
			squirrel.Expr(day+" <= ?", w.Next.Day()),
		},
	}
}

// Create inserts a contact for ownerID.
func (r *ContactRepository) Create(ctx context.Context, ownerID int64, input domain.ContactInput) (*domain.Contact, error) {
	stmt, args, err := r.builder.Insert(contactsTable).
		Columns("name", "surname", "email", "phone", "birth_date", "additional_info", "user_id").
		Values(input.Name, input.Surname, input.Email, input.Phone, input.BirthDate, input.AdditionalInfo, ownerID).
		Suffix("RETURNING " + joinColumns(contactColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert contact sql: %w", err)
	}

	contact, err := scanContact(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		return nil, mapError("insert contact", err)
	}
	return contact, nil
}

// Update replaces the writable fields of an owned contact.
func (r *ContactRepository) Update(ctx context.Context, ownerID, id int64, input domain.ContactInput) (*domain.Contact, error) {
	stmt, args, err := r.builder.Update(contactsTable).
		Set("name", input.Name).
		Set("surname", input.Surname).
		Set("email", input.Email).
		Set("phone", input.Phone).
		Set("birth_date", input.BirthDate).
		Set("additional_info", input.AdditionalInfo).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(ownedBy(ownerID, id)).
		Suffix("RETURNING " + joinColumns(contactColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update contact sql: %w", err)
	}

	contact, err := scanContact(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		return nil, mapError("update contact", err)
	}
	return contact, nil
}

// Delete removes an owned contact and returns its last state.
func (r *ContactRepository) Delete(ctx context.Context, ownerID, id int64) (*domain.Contact, error) {
	stmt, args, err := r.builder.Delete(contactsTable).
		Where(ownedBy(ownerID, id)).
		Suffix("RETURNING " + joinColumns(contactColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build delete contact sql: %w", err)
	}

	contact, err := scanContact(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		return nil, mapError("delete contact", err)
	}
	return contact, nil
}

func (r *ContactRepository) queryContacts(ctx context.Context, op string, query squirrel.SelectBuilder) ([]domain.Contact, error) {
	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s sql: %w", op, err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, mapError(op, err)
	}
	defer rows.Close()

	contacts := make([]domain.Contact, 0)
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", op, err)
		}
		contacts = append(contacts, *contact)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", op, err)
	}
	return contacts, nil
}

func scanContact(row pgx.Row) (*domain.Contact, error) {
	var (
		contact   domain.Contact
		createdAt time.Time
		updatedAt time.Time
	)
	if err := row.Scan(
		&contact.ID,
		&contact.Name,
		&contact.Surname,
		&contact.Email,
		&contact.Phone,
		&contact.BirthDate,
		&contact.AdditionalInfo,
		&contact.OwnerID,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}
	contact.CreatedAt = &createdAt
	contact.UpdatedAt = &updatedAt
	return &contact, nil
}
