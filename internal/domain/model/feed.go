package model

// FeedNotification is one pending status-change entry from the OMS
// feed. It is consumed once per cycle and discarded after its commit
// token has been acknowledged upstream.
type FeedNotification struct {
	OrderID     string `json:"orderId"`
	Status      string `json:"status"`
	DateTime    string `json:"dateTime"`
	CommitToken string `json:"commitToken"`
}
