package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ErrNotSignedIn is returned by Manager methods that require a session when
// there is none.
var ErrNotSignedIn = errors.New("not signed in")

// AuthError is the decoded error body of a failed identity request.
type AuthError struct {
	Status  int
	Message string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("auth request failed with status %d", e.Status)
	}
	return fmt.Sprintf("auth request failed: %s", e.Message)
}

// decodeAuthError handles both error shapes the collaborator produces:
// {"error":"...","error_description":"..."} from token grants and
// {"msg":"..."} (or {"message":"..."}) elsewhere.
func decodeAuthError(resp *http.Response) *AuthError {
	authErr := &AuthError{Status: resp.StatusCode}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return authErr
	}

	var payload struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
		Msg              string `json:"msg"`
		Message          string `json:"message"`
	}
	if json.Unmarshal(body, &payload) == nil {
		switch {
		case payload.ErrorDescription != "":
			authErr.Message = payload.ErrorDescription
		case payload.Msg != "":
			authErr.Message = payload.Msg
		case payload.Message != "":
			authErr.Message = payload.Message
		case payload.Error != "":
			authErr.Message = payload.Error
		}
	}
	if authErr.Message == "" {
		authErr.Message = strings.TrimSpace(string(body))
	}
	return authErr
}
