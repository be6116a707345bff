package api

// ErrorResponse is the body the companion server sends with 4xx statuses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Error messages sent by the companion server. They double as the
// messages of the local HTTP façade.
const (
	MsgMissingParams = "Missing city or date parameter"
	MsgCityNotFound  = "City not found"
	MsgDateNotFound  = "Date not found"
)
