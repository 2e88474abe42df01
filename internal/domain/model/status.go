package model

// Status describes order lifecycle states published by the OMS feed.
type Status string

const (
	StatusWaitingSellerConfirmation Status = "waiting-for-seller-confirmation"
	StatusPaymentApproved           Status = "payment-approved"
	StatusCanceled                  Status = "canceled"

	// StatusUnrecognized marks any status outside the closed set above.
	// Orders carrying it are forwarded to the event stream but never
	// persisted to a status table.
	StatusUnrecognized Status = "unrecognized"
)

// ParseStatus maps a raw feed status string onto the closed status set.
func ParseStatus(raw string) Status {
	switch Status(raw) {
	case StatusWaitingSellerConfirmation, StatusPaymentApproved, StatusCanceled:
		return Status(raw)
	default:
		return StatusUnrecognized
	}
}

// Canonical collapses any value outside the closed set to
// StatusUnrecognized. Order documents keep the raw upstream value so
// the event stream sees exactly what the feed said.
func (s Status) Canonical() Status {
	return ParseStatus(string(s))
}

// Persistable reports whether orders with this status are written to a
// status table.
func (s Status) Persistable() bool {
	return s.Canonical() != StatusUnrecognized
}
