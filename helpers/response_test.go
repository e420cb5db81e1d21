package helpers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"trainingportal/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

func TestErrorStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{domain.ArchivedError(), http.StatusForbidden},
		{fmt.Errorf("update: %w", domain.ArchivedError()), http.StatusForbidden},
		{domain.NewValidationError("endDate", "bad"), http.StatusBadRequest},
		{domain.ErrEditionNotFound, http.StatusNotFound},
		{fmt.Errorf("wrapped: %w", domain.ErrLessonNotFound), http.StatusNotFound},
		{domain.ErrConcurrentUpdate, http.StatusConflict},
		{domain.ErrLessonLocked, http.StatusConflict},
		{errors.New("db down"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		if got := ErrorStatus(tc.err); got != tc.want {
			t.Errorf("%v: got %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestConstraintViolations(t *testing.T) {
	unique := []error{
		gorm.ErrDuplicatedKey,
		&pgconn.PgError{Code: "23505"},
		fmt.Errorf("insert: %w", &pq.Error{Code: "23505"}),
	}
	for _, err := range unique {
		if !IsUniqueViolation(err) {
			t.Errorf("%v: expected unique violation", err)
		}
	}

	fk := []error{
		gorm.ErrForeignKeyViolated,
		&pgconn.PgError{Code: "23503"},
		&pq.Error{Code: "23503"},
	}
	for _, err := range fk {
		if !IsForeignKeyViolation(err) {
			t.Errorf("%v: expected foreign key violation", err)
		}
	}

	if IsUniqueViolation(errors.New("other")) || IsForeignKeyViolation(&pgconn.PgError{Code: "23505"}) {
		t.Error("unexpected match")
	}
}
