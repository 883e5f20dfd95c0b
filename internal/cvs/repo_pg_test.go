package cvs

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockStore(t *testing.T) (*PGStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewPGStore(db), mock
}

func TestCVPGRepoGetByID(t *testing.T) {
	store, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"id", "name", "personal_information_id"}).
		AddRow(int64(7), "Backend Engineer", int64(3))
	mock.ExpectQuery("SELECT id, name, personal_information_id").
		WithArgs(int64(7)).
		WillReturnRows(rows)

	cv, err := store.CVs().GetByID(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if cv.ID != 7 || cv.Name != "Backend Engineer" || cv.PersonalInformationID != 3 {
		t.Fatalf("unexpected cv: %+v", cv)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestCVPGRepoGetByIDNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT id, name, personal_information_id").
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "personal_information_id"}))

	_, err := store.CVs().GetByID(context.Background(), 99)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCVPGRepoAddReturnsGeneratedID(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("INSERT INTO cvs").
		WithArgs("Backend Engineer", int64(0)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(12)))

	cv, err := store.CVs().Add(context.Background(), CV{Name: "Backend Engineer"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if cv.ID != 12 {
		t.Fatalf("expected generated id 12, got %d", cv.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestCVPGRepoUpdateMissingRow(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("UPDATE cvs").
		WithArgs("Backend Engineer", int64(3), int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.CVs().Update(context.Background(), CV{ID: 42, Name: "Backend Engineer", PersonalInformationID: 3})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCVPGRepoDeleteRemovesExperiencesFirst(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("DELETE FROM experience_information").
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM cvs").
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := store.CVs().Delete(context.Background(), 5); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestCVPGRepoDeleteMissingIsNoOp(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("DELETE FROM experience_information").
		WithArgs(int64(404)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM cvs").
		WithArgs(int64(404)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := store.CVs().Delete(context.Background(), 404); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}

func TestCVPGRepoGetExperiences(t *testing.T) {
	store, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"id", "company_name", "city", "company_field", "cv_id"}).
		AddRow(int64(1), "Acme", "Berlin", "Logistics", int64(5)).
		AddRow(int64(2), "Globex", nil, nil, int64(5))
	mock.ExpectQuery("SELECT id, company_name, city, company_field, cv_id").
		WithArgs(int64(5)).
		WillReturnRows(rows)

	exps, err := store.CVs().GetExperiences(context.Background(), 5)
	if err != nil {
		t.Fatalf("GetExperiences: %v", err)
	}
	if len(exps) != 2 {
		t.Fatalf("expected 2 experiences, got %d", len(exps))
	}
	if exps[1].City != "" || exps[1].CompanyField != "" {
		t.Fatalf("expected NULL columns to scan as empty strings: %+v", exps[1])
	}
}

func TestCVPGRepoRemoveExperienceScopedToCV(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("DELETE FROM experience_information").
		WithArgs(int64(5), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := store.CVs().RemoveExperience(context.Background(), 5, 2); err != nil {
		t.Fatalf("RemoveExperience: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestCVPGRepoHasExperience(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(int64(5), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := store.CVs().HasExperience(context.Background(), 5, 2)
	if err != nil {
		t.Fatalf("HasExperience: %v", err)
	}
	if !ok {
		t.Fatal("expected experience to exist")
	}
}

func TestPersonalInfoPGRepoAddStoresNulls(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("INSERT INTO personal_information").
		WithArgs("Dev Example", nil, nil, "5551234567").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(9)))

	info, err := store.PersonalInfo().Add(context.Background(), PersonalInformation{
		FullName:     "Dev Example",
		MobileNumber: "5551234567",
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if info.ID != 9 {
		t.Fatalf("expected generated id 9, got %d", info.ID)
	}
}

func TestWithinTxCommitsOnSuccess(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO cvs").
		WithArgs("Backend Engineer", int64(0)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectCommit()

	err := store.WithinTx(context.Background(), func(tx Store) error {
		_, err := tx.CVs().Add(context.Background(), CV{Name: "Backend Engineer"})
		return err
	})
	if err != nil {
		t.Fatalf("WithinTx: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	wantErr := errors.New("boom")
	err := store.WithinTx(context.Background(), func(tx Store) error {
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected callback error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
