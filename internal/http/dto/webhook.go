package dto

// WebhookResponse is returned for every delivery, including failed ones, so
// the tracker never retries.
type WebhookResponse struct {
	OK       bool `json:"ok"`
	Received int  `json:"received"`
	Inserted int  `json:"inserted"`
	Notified int  `json:"notified"`
	Skipped  int  `json:"skipped"`
}
