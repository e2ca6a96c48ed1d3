package db

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
)

func TestMigrateCreatesMissingTablesOnly(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer conn.Close()

	mock.ExpectQuery("information_schema\\.tables").WithArgs("trips").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).AddRow("trips"))
	mock.ExpectQuery("information_schema\\.tables").WithArgs("trip_steps").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS trip_steps").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("information_schema\\.tables").WithArgs("trip_share_codes").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).AddRow("trip_share_codes"))
	mock.ExpectQuery("information_schema\\.columns").WithArgs("trip_steps", "verified_at").
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}).AddRow("verified_at"))

	if err := Migrate(context.Background(), conn, "trip"); err != nil {
		t.Fatalf("migrate error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMigrateAddsLateColumn(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer conn.Close()

	mock.ExpectQuery("information_schema\\.tables").WithArgs("travels").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).AddRow("travels"))
	mock.ExpectQuery("information_schema\\.columns").WithArgs("travels", "created_by").
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}))
	mock.ExpectExec("ALTER TABLE travels ADD COLUMN created_by").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := Migrate(context.Background(), conn, "travel"); err != nil {
		t.Fatalf("migrate error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMigrateUnknownService(t *testing.T) {
	if err := Migrate(context.Background(), nil, "nope"); err == nil {
		t.Fatalf("expected error for unknown service")
	}
}

func TestIsDuplicateKey(t *testing.T) {
	if !IsDuplicateKey(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}) {
		t.Fatalf("expected 1062 to be a duplicate key error")
	}
	if IsDuplicateKey(errors.New("other")) {
		t.Fatalf("plain error must not match")
	}
}

func TestTablesPerService(t *testing.T) {
	if got := Tables("eat"); len(got) != 1 || got[0] != "eats" {
		t.Fatalf("unexpected tables %v", got)
	}
}
