package api

import (
	"errors"
	"fmt"
)

// ErrNotAuthenticated means there is no usable token: none was supplied or the
// remote API answered 401. Callers end the session and ask the user to log in.
var ErrNotAuthenticated = errors.New("not authenticated")

// NetworkError wraps a transport failure. The request may or may not have reached the server.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPError is a non-2xx answer other than 401.
type HTTPError struct {
	Op         string
	StatusCode int
	Message    string // "error" or "detail" field of the body, when present
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: http %d: %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: http %d", e.Op, e.StatusCode)
}

// UserMessage returns text suitable for showing in a view.
func UserMessage(err error) string {
	var httpErr *HTTPError
	var netErr *NetworkError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotAuthenticated):
		return "Sessão expirada, faça login novamente"
	case errors.As(err, &netErr):
		return "Não foi possível conectar ao servidor. Tente novamente."
	case errors.As(err, &httpErr):
		if httpErr.Message != "" {
			return httpErr.Message
		}
		if httpErr.StatusCode >= 500 {
			return "O servidor encontrou um erro. Tente novamente mais tarde."
		}
		return fmt.Sprintf("Erro ao processar a requisição (%d)", httpErr.StatusCode)
	default:
		return "Erro inesperado"
	}
}
