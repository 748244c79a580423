package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/lib/pq"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func TestIsUndefinedTable(t *testing.T) {
	undefined := &pq.Error{Code: "42P01", Message: `relation "fund_metrics" does not exist`}

	if !isUndefinedTable(undefined) {
		t.Error("expected 42P01 to be detected")
	}
	if !isUndefinedTable(fmt.Errorf("list: %w", undefined)) {
		t.Error("expected wrapped 42P01 to be detected")
	}
	if isUndefinedTable(&pq.Error{Code: "42703"}) {
		t.Error("undefined column is not an undefined table")
	}
	if isUndefinedTable(errors.New("boom")) || isUndefinedTable(nil) {
		t.Error("expected non-pq errors to be ignored")
	}
}

func TestHashLockName(t *testing.T) {
	if hashLockName("document:a") != hashLockName("document:a") {
		t.Error("expected stable lock keys")
	}
	if hashLockName("document:a") == hashLockName("document:b") {
		t.Error("expected distinct lock keys")
	}
}

func TestOrderBy(t *testing.T) {
	if got := orderBy("as_of_date", domain.SortDescending); got != "as_of_date DESC" {
		t.Errorf("unexpected %q", got)
	}
	if got := orderBy("as_of_date", "; DROP TABLE funds"); got != "as_of_date ASC" {
		t.Errorf("expected unknown order to fall back to ASC, got %q", got)
	}
}

func TestNullHelpers(t *testing.T) {
	if NullString(nil).Valid {
		t.Error("expected invalid NullString for nil")
	}
	s := "fund-1"
	if ns := NullString(&s); !ns.Valid || ns.String != s {
		t.Errorf("unexpected %+v", ns)
	}

	n := 7
	if ni := NullInt(&n); !ni.Valid || ni.Int64 != 7 {
		t.Errorf("unexpected %+v", ni)
	}
	if p := IntPtr(sql.NullInt64{Int64: 3, Valid: true}); p == nil || *p != 3 {
		t.Errorf("unexpected %v", p)
	}
	if IntPtr(sql.NullInt64{}) != nil {
		t.Error("expected nil for invalid int")
	}
	if FloatPtr(sql.NullFloat64{}) != nil {
		t.Error("expected nil for invalid float")
	}

	now := time.Now()
	if nt := NullTime(&now); !nt.Valid {
		t.Error("expected valid NullTime")
	}
	if TimePtr(sql.NullTime{}) != nil {
		t.Error("expected nil for invalid time")
	}
}
