package domain

import (
	"testing"
	"time"
)

func TestRangeQuery_Normalize(t *testing.T) {
	q := RangeQuery{Key: "fund-1"}.Normalize()
	if q.Limit != DefaultContextLimit {
		t.Errorf("expected default limit, got %d", q.Limit)
	}
	if q.Order != SortAscending {
		t.Errorf("expected ascending default, got %s", q.Order)
	}

	q = RangeQuery{Key: "fund-1", Limit: 100000, Order: "DESC"}.Normalize()
	if q.Limit != MaxContextLimit {
		t.Errorf("expected clamped limit, got %d", q.Limit)
	}
	if q.Order != SortDescending {
		t.Errorf("expected descending, got %s", q.Order)
	}
}

func TestRangeQuery_Validate(t *testing.T) {
	if err := (RangeQuery{}).Validate(); err == nil {
		t.Error("expected error for missing key")
	}

	from := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if err := (RangeQuery{Key: "x", From: &from, To: &to}).Validate(); err == nil {
		t.Error("expected error for inverted range")
	}
}

func TestAvailability(t *testing.T) {
	a := Available[FundMetric](nil)
	if !a.Available || a.Rows == nil || len(a.Rows) != 0 {
		t.Errorf("expected available empty rows, got %+v", a)
	}

	u := Unavailable[CashFlow]("fund_cash_flows table does not exist")
	if u.Available {
		t.Error("expected unavailable")
	}
	if u.Reason == "" {
		t.Error("expected reason")
	}
	if u.Rows == nil {
		t.Error("expected non-nil rows for JSON encoding")
	}
}

func TestAnswerInput_HasEvidence(t *testing.T) {
	empty := AnswerInput{Question: "q"}
	if empty.HasEvidence() {
		t.Error("expected no evidence")
	}

	withFund := AnswerInput{Fund: &Fund{ID: "f"}}
	if !withFund.HasEvidence() {
		t.Error("expected fund record to count as evidence")
	}

	withMetric := AnswerInput{Metrics: []FundMetric{{FundID: "f"}}}
	if !withMetric.HasEvidence() {
		t.Error("expected metrics to count as evidence")
	}
}

func TestIsPanelCard(t *testing.T) {
	if !IsPanelCard("Risk") {
		t.Error("expected case-insensitive match")
	}
	if IsPanelCard(CardSummary) {
		t.Error("summary is not a requested card")
	}
}
