package ingest

import (
	"strings"
	"testing"
)

func validRow() []string {
	return []string{
		"TXN-001", "ACC-100", "ACC-200", "150.75", "transfer",
		"2024-01-15T10:30:00", "completed", "true", "40.7128", "-74.0060",
		"Mobile", "slice-5g-01", "12", "100", "560001",
	}
}

func TestParseRow(t *testing.T) {
	tx, err := ParseRow(validRow())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if tx.TransactionID != "TXN-001" {
		t.Errorf("transactionId mismatch: got %q", tx.TransactionID)
	}
	if tx.SenderAccountID != "ACC-100" || tx.ReceiverAccountID != "ACC-200" {
		t.Errorf("account ids mismatch: got %q -> %q", tx.SenderAccountID, tx.ReceiverAccountID)
	}
	if tx.Amount != 150.75 {
		t.Errorf("amount mismatch: got %v", tx.Amount)
	}
	if tx.Type != "transfer" || tx.Status != "completed" {
		t.Errorf("type/status mismatch: got %q/%q", tx.Type, tx.Status)
	}
	if tx.Timestamp != "2024-01-15T10:30:00" {
		t.Errorf("timestamp mismatch: got %q", tx.Timestamp)
	}
	if !tx.FraudFlag {
		t.Error("expected fraud flag to be true")
	}
	if tx.Latitude != "40.7128" || tx.Longitude != "-74.0060" {
		t.Errorf("coordinates mismatch: got %q/%q", tx.Latitude, tx.Longitude)
	}
	if tx.DeviceUsed != "Mobile" || tx.NetworkSliceID != "slice-5g-01" {
		t.Errorf("device/slice mismatch: got %q/%q", tx.DeviceUsed, tx.NetworkSliceID)
	}
	if tx.Latency != 12 || tx.Bandwidth != 100 || tx.PinCode != 560001 {
		t.Errorf("numeric fields mismatch: got %d/%d/%d", tx.Latency, tx.Bandwidth, tx.PinCode)
	}
}

func TestParseRow_TrimsFields(t *testing.T) {
	row := validRow()
	for i := range row {
		row[i] = "  " + row[i] + "\t"
	}

	tx, err := ParseRow(row)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if tx.TransactionID != "TXN-001" {
		t.Errorf("expected trimmed transactionId, got %q", tx.TransactionID)
	}
	if tx.Amount != 150.75 {
		t.Errorf("expected trimmed amount to parse, got %v", tx.Amount)
	}
}

func TestParseRow_ShortRowRejected(t *testing.T) {
	row := validRow()[:14]
	if _, err := ParseRow(row); err == nil {
		t.Fatal("expected error for row with fewer than 15 fields")
	}
}

func TestParseRow_ExtraFieldsIgnored(t *testing.T) {
	row := append(validRow(), "extra", "fields")
	tx, err := ParseRow(row)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if tx.PinCode != 560001 {
		t.Errorf("pinCode mismatch: got %d", tx.PinCode)
	}
}

func TestParseRow_NumericCoercionFailures(t *testing.T) {
	tests := []struct {
		name  string
		index int
	}{
		{"amount", 3},
		{"latency", 12},
		{"bandwidth", 13},
		{"pinCode", 14},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			row := validRow()
			row[tc.index] = "not-a-number"
			_, err := ParseRow(row)
			if err == nil {
				t.Fatalf("expected error for non-numeric %s", tc.name)
			}
			if !strings.Contains(err.Error(), tc.name) {
				t.Errorf("expected error to name field %s, got %v", tc.name, err)
			}
		})
	}
}

func TestParseRow_FraudFlagCoercion(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"true", true},
		{"TRUE", true},
		{"True", true},
		{"false", false},
		{"FALSE", false},
		// Any other text coerces to false without an error.
		{"yes", false},
		{"1", false},
		{"", false},
	}

	for _, tc := range tests {
		row := validRow()
		row[7] = tc.raw
		tx, err := ParseRow(row)
		if err != nil {
			t.Fatalf("fraud flag %q: expected no error, got %v", tc.raw, err)
		}
		if tx.FraudFlag != tc.want {
			t.Errorf("fraud flag %q: got %v, want %v", tc.raw, tx.FraudFlag, tc.want)
		}
	}
}
