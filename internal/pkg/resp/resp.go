/*
Package resp provides helpers for constructing standardized HTTP JSON responses.

Every response uses the `{success, msg, data}` envelope. Error responses add the
business error code from the errs package alongside the HTTP status.
*/
package resp

import (
	"encoding/json"
	"net/http"

	"uchat/internal/pkg/errs"
	"uchat/internal/pkg/logx"
)

// JSONResponse is the envelope returned by every HTTP endpoint.
type JSONResponse struct {
	// Success reports whether the request was handled without error.
	Success bool `json:"success"`

	// Msg is the client-friendly status description or error message.
	Msg string `json:"msg"`

	// Code is the business error code; zero on success.
	Code int `json:"code,omitempty"`

	// Data is the optional response payload.
	Data any `json:"data,omitempty"`
}

// RespondJSON sets the Content-Type and writes the JSON payload.
func RespondJSON(w http.ResponseWriter, r *http.Request, httpStatus int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	response, err := json.Marshal(payload)
	if err != nil {
		logx.Error(
			err,
			"Error encoding JSON response",
			"http_status", httpStatus,
		)

		http.Error(w, "Error encoding JSON response", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(httpStatus)
	w.Write(response)
}

// RespondSuccess sends a 200 response with the given message and data.
func RespondSuccess(w http.ResponseWriter, r *http.Request, msg string, data any) {
	res := JSONResponse{
		Success: true,
		Msg:     msg,
		Data:    data,
	}
	RespondJSON(w, r, http.StatusOK, res)
}

// RespondError sends an error response built from the custom error.
func RespondError(w http.ResponseWriter, r *http.Request, customErr *errs.CustomError) {
	if customErr == nil {
		customErr = errs.NewError(errs.ErrUnknown)
	}

	res := JSONResponse{
		Success: false,
		Msg:     customErr.Message,
		Code:    customErr.Code,
	}
	RespondJSON(w, r, customErr.Status, res)
}
