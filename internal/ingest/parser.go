package ingest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arjunrao/findata/internal/domain"
)

// minFields is the number of leading CSV columns a row must carry.
// Columns beyond the 15th are ignored.
const minFields = 15

// ParseRow converts one CSV row into a Transaction. Every field is
// trimmed before coercion. A row with fewer than 15 fields, or a
// numeric field that fails to parse, rejects the whole row; the
// fraud-flag column parses "true"/"false" case-insensitively and any
// other text silently coerces to false.
func ParseRow(fields []string) (domain.Transaction, error) {
	if len(fields) < minFields {
		return domain.Transaction{}, fmt.Errorf("expected %d fields, got %d", minFields, len(fields))
	}

	trimmed := make([]string, minFields)
	for i := 0; i < minFields; i++ {
		trimmed[i] = strings.TrimSpace(fields[i])
	}

	amount, err := strconv.ParseFloat(trimmed[3], 64)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("parse amount %q: %w", trimmed[3], err)
	}
	latency, err := strconv.Atoi(trimmed[12])
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("parse latency %q: %w", trimmed[12], err)
	}
	bandwidth, err := strconv.Atoi(trimmed[13])
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("parse bandwidth %q: %w", trimmed[13], err)
	}
	pinCode, err := strconv.Atoi(trimmed[14])
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("parse pinCode %q: %w", trimmed[14], err)
	}

	return domain.Transaction{
		TransactionID:     trimmed[0],
		SenderAccountID:   trimmed[1],
		ReceiverAccountID: trimmed[2],
		Amount:            amount,
		Type:              trimmed[4],
		Timestamp:         trimmed[5],
		Status:            trimmed[6],
		FraudFlag:         strings.EqualFold(trimmed[7], "true"),
		Latitude:          trimmed[8],
		Longitude:         trimmed[9],
		DeviceUsed:        trimmed[10],
		NetworkSliceID:    trimmed[11],
		Latency:           latency,
		Bandwidth:         bandwidth,
		PinCode:           pinCode,
	}, nil
}
