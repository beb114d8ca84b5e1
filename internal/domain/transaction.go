package domain

// Transaction models a single ingested financial event with its fraud,
// network and location metadata. Records are created by the ingestion
// parser and never mutated after persistence. TransactionID is not
// unique; re-ingested records are stored as new entries.
type Transaction struct {
	ID                string  `json:"id,omitempty"`
	TransactionID     string  `json:"transactionId"`
	SenderAccountID   string  `json:"senderAccountId"`
	ReceiverAccountID string  `json:"receiverAccountId"`
	Amount            float64 `json:"amount"`
	Type              string  `json:"type"`
	Timestamp         string  `json:"timestamp"`
	Status            string  `json:"status"`
	FraudFlag         bool    `json:"fraudFlag"`
	Latitude          string  `json:"latitude"`
	Longitude         string  `json:"longitude"`
	DeviceUsed        string  `json:"deviceUsed"`
	NetworkSliceID    string  `json:"networkSliceId"`
	Latency           int     `json:"latency"`   // ms
	Bandwidth         int     `json:"bandwidth"` // Mbps
	PinCode           int     `json:"pinCode"`
}
