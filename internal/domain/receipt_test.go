package domain

import (
	"testing"
	"time"
)

func TestFinancialYear(t *testing.T) {
	tests := []struct {
		at   time.Time
		want string
	}{
		{time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), "2024-25"},
		{time.Date(2025, 3, 31, 12, 0, 0, 0, time.UTC), "2024-25"},
		{time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC), "2024-25"},
		{time.Date(2099, 12, 1, 0, 0, 0, 0, time.UTC), "2099-00"},
		// 31 March 20:00 UTC is already 1 April in India.
		{time.Date(2025, 3, 31, 20, 0, 0, 0, time.UTC), "2025-26"},
	}
	for _, tc := range tests {
		if got := FinancialYear(tc.at); got != tc.want {
			t.Fatalf("FinancialYear(%v) = %q, want %q", tc.at, got, tc.want)
		}
	}
}

func TestReceiptNumberAndKey(t *testing.T) {
	issued := time.Date(2024, 8, 15, 9, 0, 0, 0, time.UTC)
	n := ReceiptNumber("WFY", issued, 7)
	if n != "WFY202400007" {
		t.Fatalf("ReceiptNumber() = %q", n)
	}
	key := ReceiptStorageKey(Receipt{Number: n, FinancialYear: FinancialYear(issued)})
	if key != "receipts/2024-25/WFY202400007-2024-25.pdf" {
		t.Fatalf("ReceiptStorageKey() = %q", key)
	}
}
