package handler

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error errorPayload `json:"error"`
}

func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Error: errorPayload{
			Code:    code,
			Message: message,
		},
	}
}

// stepResponse is the envelope for the refund step endpoints: a flat ok flag
// plus the message the refund page shows verbatim.
type stepResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// finalFailureResponse lists every precondition the final refund submission
// failed, so the page can show them all at once.
type finalFailureResponse struct {
	OK      bool     `json:"ok"`
	Message string   `json:"message"`
	Errors  []string `json:"errors"`
}
