package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/InkyWorld/goit-web-hw-14/internal/core/domain"
	"github.com/InkyWorld/goit-web-hw-14/internal/repository"
)

var contactRowColumns = []string{
	"id", "name", "surname", "email", "phone", "birth_date", "additional_info", "user_id", "created_at", "updated_at",
}

func newContactMock(t *testing.T) (pgxmock.PgxPoolIface, *ContactRepository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock, NewContactRepository(mock)
}

func contactRow(rows *pgxmock.Rows, id, owner int64, name string, birth time.Time) *pgxmock.Rows {
	now := time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC)
	var info *string
	return rows.AddRow(id, name, "Doe", name+"@example.com", "0501234567", birth, info, owner, now, now)
}

func TestContactRepository_GetByIDScopesOwner(t *testing.T) {
	mock, repo := newContactMock(t)

	birth := time.Date(1990, time.June, 15, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT .+ FROM contacts WHERE \(user_id = \$1 AND id = \$2\)`).
		WithArgs(int64(7), int64(3)).
		WillReturnRows(contactRow(pgxmock.NewRows(contactRowColumns), 3, 7, "ann", birth))

	contact, err := repo.GetByID(context.Background(), 7, 3)
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if contact.ID != 3 || contact.OwnerID != 7 {
		t.Fatalf("unexpected contact %+v", contact)
	}
	if contact.CreatedAt == nil || contact.UpdatedAt == nil {
		t.Fatal("expected timestamps to be populated")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestContactRepository_GetByIDNotOwned(t *testing.T) {
	mock, repo := newContactMock(t)

	mock.ExpectQuery(`SELECT .+ FROM contacts`).
		WithArgs(int64(8), int64(3)).
		WillReturnRows(pgxmock.NewRows(contactRowColumns))

	if _, err := repo.GetByID(context.Background(), 8, 3); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestContactRepository_ListPaginates(t *testing.T) {
	mock, repo := newContactMock(t)

	birth := time.Date(1990, time.March, 1, 0, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows(contactRowColumns)
	contactRow(rows, 1, 7, "ann", birth)
	contactRow(rows, 2, 7, "bob", birth)

	mock.ExpectQuery(`SELECT .+ FROM contacts WHERE user_id = \$1 ORDER BY id LIMIT 10 OFFSET 20`).
		WithArgs(int64(7)).
		WillReturnRows(rows)

	contacts, err := repo.List(context.Background(), 7, domain.Page{Limit: 10, Offset: 20})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(contacts) != 2 || contacts[0].Name != "ann" || contacts[1].Name != "bob" {
		t.Fatalf("unexpected contacts %+v", contacts)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestContactRepository_SearchCombinesFiltersWithAnd(t *testing.T) {
	mock, repo := newContactMock(t)

	mock.ExpectQuery(`WHERE \(user_id = \$1 AND name ILIKE \$2 AND email ILIKE \$3\)`).
		WithArgs(int64(7), "%an%", `%50\%%`).
		WillReturnRows(pgxmock.NewRows(contactRowColumns))

	contacts, err := repo.Search(context.Background(), 7, domain.ContactFilter{Name: "an", Email: "50%"})
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(contacts) != 0 {
		t.Fatalf("expected empty result, got %d", len(contacts))
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestContactRepository_SearchWithoutFiltersStaysScoped(t *testing.T) {
	mock, repo := newContactMock(t)

	mock.ExpectQuery(`WHERE \(user_id = \$1\) ORDER BY id`).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows(contactRowColumns))

	if _, err := repo.Search(context.Background(), 7, domain.ContactFilter{Name: "  ", Email: "\t"}); err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestContactRepository_ListBirthdaysUsesWindow(t *testing.T) {
	mock, repo := newContactMock(t)

	window := domain.NewBirthdayWindow(time.Date(2025, time.January, 28, 0, 0, 0, 0, time.UTC))
	mock.ExpectQuery(`SELECT .+ FROM contacts WHERE`).
		WithArgs(int64(7), 1, 28, 31, 2, 4).
		WillReturnRows(pgxmock.NewRows(contactRowColumns))

	if _, err := repo.ListBirthdays(context.Background(), 7, window); err != nil {
		t.Fatalf("ListBirthdays returned error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBirthdayPredicate(t *testing.T) {
	flat := domain.NewBirthdayWindow(time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC))
	sql, args, err := birthdayPredicate(flat).ToSql()
	if err != nil {
		t.Fatalf("ToSql: %v", err)
	}
	wantSQL := "(EXTRACT(MONTH FROM birth_date) = ? AND EXTRACT(DAY FROM birth_date) BETWEEN ? AND ?)"
	if sql != wantSQL {
		t.Fatalf("unexpected sql %q", sql)
	}
	if len(args) != 3 || args[0] != 6 || args[1] != 10 || args[2] != 17 {
		t.Fatalf("unexpected args %v", args)
	}

	wrap := domain.NewBirthdayWindow(time.Date(2025, time.January, 28, 0, 0, 0, 0, time.UTC))
	sql, args, err = birthdayPredicate(wrap).ToSql()
	if err != nil {
		t.Fatalf("ToSql: %v", err)
	}
	wantSQL = "((EXTRACT(MONTH FROM birth_date) = ? AND EXTRACT(DAY FROM birth_date) BETWEEN ? AND ?) OR " +
		"(EXTRACT(MONTH FROM birth_date) = ? AND EXTRACT(DAY FROM birth_date) <= ?))"
	if sql != wantSQL {
		t.Fatalf("unexpected sql %q", sql)
	}
	if len(args) != 5 || args[0] != 1 || args[1] != 28 || args[2] != 31 || args[3] != 2 || args[4] != 4 {
		t.Fatalf("unexpected args %v", args)
	}
}

func TestContactRepository_CreateConflict(t *testing.T) {
	mock, repo := newContactMock(t)

	mock.ExpectQuery(`INSERT INTO contacts`).
		WillReturnError(&pgconnError)

	_, err := repo.Create(context.Background(), 7, domain.ContactInput{Name: "ann", Email: "ann@example.com"})
	if !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestContactRepository_SameEmailAcrossOwners(t *testing.T) {
	mock, repo := newContactMock(t)
	birth := time.Date(1990, time.June, 15, 0, 0, 0, 0, time.UTC)
	input := domain.ContactInput{Name: "ann", Surname: "Doe", Email: "ann@example.com", Phone: "0501234567", BirthDate: birth}

	mock.ExpectQuery(`INSERT INTO contacts`).
		WithArgs("ann", "Doe", "ann@example.com", "0501234567", birth, input.AdditionalInfo, int64(1)).
		WillReturnError(&pgconnError)
	mock.ExpectQuery(`INSERT INTO contacts`).
		WithArgs("ann", "Doe", "ann@example.com", "0501234567", birth, input.AdditionalInfo, int64(2)).
		WillReturnRows(contactRow(pgxmock.NewRows(contactRowColumns), 9, 2, "ann", birth))

	if _, err := repo.Create(context.Background(), 1, input); !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("duplicate within owner 1: expected ErrConflict, got %v", err)
	}
	contact, err := repo.Create(context.Background(), 2, input)
	if err != nil {
		t.Fatalf("same email for owner 2 returned error: %v", err)
	}
	if contact.OwnerID != 2 || contact.Email != "ann@example.com" {
		t.Fatalf("unexpected contact %+v", contact)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestContactRepository_UpdateNotOwned(t *testing.T) {
	mock, repo := newContactMock(t)

	mock.ExpectQuery(`UPDATE contacts SET .+ WHERE \(user_id = \$\d+ AND id = \$\d+\) RETURNING`).
		WillReturnRows(pgxmock.NewRows(contactRowColumns))

	_, err := repo.Update(context.Background(), 8, 3, domain.ContactInput{Name: "x"})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestContactRepository_DeleteReturnsRemoved(t *testing.T) {
	mock, repo := newContactMock(t)

	birth := time.Date(1990, time.March, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`DELETE FROM contacts WHERE \(user_id = \$1 AND id = \$2\) RETURNING`).
		WithArgs(int64(7), int64(3)).
		WillReturnRows(contactRow(pgxmock.NewRows(contactRowColumns), 3, 7, "ann", birth))

	contact, err := repo.Delete(context.Background(), 7, 3)
	if err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if contact.ID != 3 {
		t.Fatalf("unexpected contact %+v", contact)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
