package postgrest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// APIError is the decoded error body of a failed storage request. Message
// comes straight from the collaborator and is shown to the user as-is.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("storage request failed with status %d", e.Status)
	}
	msg := fmt.Sprintf("storage request failed: %s", e.Message)
	if e.Code != "" {
		msg += fmt.Sprintf(" (code %s)", e.Code)
	}
	return msg
}

func decodeAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{Status: resp.StatusCode}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return apiErr
	}
	if json.Unmarshal(body, apiErr) != nil || apiErr.Message == "" {
		// Not the structured error shape; keep whatever text came back.
		apiErr.Message = strings.TrimSpace(string(body))
	}
	return apiErr
}
