package model

import (
	"strconv"
	"time"

	domainErrors "omsrelay/internal/domain/errors"
)

// Order is the full order record assembled from a feed notification and
// the order-detail payload. The feed's status wins over the status
// embedded in the detail snapshot: the feed is always fresher.
type Order struct {
	AccountName  string `json:"accountName"`
	OrderID      string `json:"orderId"`
	Origin       string `json:"origin"`
	AffiliateID  string `json:"affiliateId"`
	SalesChannel string `json:"salesChannel"`
	Value        string `json:"value"`
	CreationDate string `json:"creationDate"`
	LastChange   string `json:"lastChange"`
	Status       Status `json:"status"`
}

// Amount normalizes Value, an integer count of minor currency units,
// into major units. A non-numeric Value yields ErrInvalidAmount.
func (o *Order) Amount() (float64, error) {
	raw, err := strconv.ParseFloat(o.Value, 64)
	if err != nil {
		return 0, domainErrors.ErrInvalidAmount
	}
	return raw / 100, nil
}

// PartitionKey derives the storage partition key from the processing
// date, day granularity, separators stripped: Dec 1 2024 -> "12012024".
// Records for the same order processed on different days land in
// different partitions, which bounds partition size.
func PartitionKey(processedAt time.Time) string {
	return processedAt.Format("01022006")
}
