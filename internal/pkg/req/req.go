/*
Package req provides helpers for HTTP request parsing and data binding.

It parses JSON request bodies with strict field checking so that unknown or
trailing content is rejected before any business logic runs.
*/
package req

import (
	"encoding/json"
	"net/http"
	"strings"

	"uchat/internal/pkg/errs"
)

// MaxBodyBytes limits the size of any JSON request body (1 MB).
const MaxBodyBytes int64 = 1 << 20

// BindJSON binds the JSON request body to dst, rejecting unknown fields.
func BindJSON(w http.ResponseWriter, r *http.Request, dst any) *errs.CustomError {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		if strings.Contains(err.Error(), "request body too large") {
			return errs.NewError(errs.ErrRequestEntityTooLarge)
		}
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return nil
}
