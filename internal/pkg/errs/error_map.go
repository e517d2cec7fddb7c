/*
Package errs provides custom error types and application-level error code constants.

This file maps each error code to its CustomError template, standardizing HTTP
responses and internal error handling.
*/
package errs

import "net/http"

// errorMap stores the CustomError template for every application error code.
// A zero Status defaults to 400 Bad Request when the error is constructed.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:         {Code: ErrInvalidParams, Message: "Invalid request parameters."},
	ErrUnsupportedMediaType:  {Code: ErrUnsupportedMediaType, Message: "Unsupported request format.", Status: http.StatusUnsupportedMediaType},
	ErrInvalidJSONFormat:     {Code: ErrInvalidJSONFormat, Message: "Request body is not valid JSON."},
	ErrExtraContentInBody:    {Code: ErrExtraContentInBody, Message: "Request contains unexpected data."},
	ErrRequestEntityTooLarge: {Code: ErrRequestEntityTooLarge, Message: "Request size is too large.", Status: http.StatusRequestEntityTooLarge},
	ErrRateLimitExceeded:     {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx: Chat and Attachment Business Logic Errors
	ErrMessageNotFound:       {Code: ErrMessageNotFound, Message: "Message not found.", Status: http.StatusUnprocessableEntity},
	ErrMessageContentTooLong: {Code: ErrMessageContentTooLong, Message: "Message is too long."},
	ErrPageInvalid:           {Code: ErrPageInvalid, Message: "Invalid page number."},
	ErrAttachmentTypeInvalid: {Code: ErrAttachmentTypeInvalid, Message: "Unsupported attachment type."},
	ErrFileSizeTooLarge:      {Code: ErrFileSizeTooLarge, Message: "File is too large."},
	ErrAttachmentKeyInvalid:  {Code: ErrAttachmentKeyInvalid, Message: "Invalid attachment."},

	// 3xxx: User and Session Errors
	ErrUserNotFound:       {Code: ErrUserNotFound, Message: "User not found.", Status: http.StatusUnprocessableEntity},
	ErrUserAlreadyExists:  {Code: ErrUserAlreadyExists, Message: "Email or nickname is already taken.", Status: http.StatusUnprocessableEntity},
	ErrInvalidCredentials: {Code: ErrInvalidCredentials, Message: "Incorrect email or password.", Status: http.StatusUnprocessableEntity},
	ErrInvalidEmail:       {Code: ErrInvalidEmail, Message: "Invalid email address.", Status: http.StatusUnprocessableEntity},
	ErrInvalidNickname:    {Code: ErrInvalidNickname, Message: "Invalid nickname.", Status: http.StatusUnprocessableEntity},
	ErrInvalidPassword:    {Code: ErrInvalidPassword, Message: "Invalid password.", Status: http.StatusUnprocessableEntity},
	ErrAlreadyLoggedIn:    {Code: ErrAlreadyLoggedIn, Message: "You are already signed in."},
	ErrUnauthorized:       {Code: ErrUnauthorized, Message: "Please sign in to continue.", Status: http.StatusUnauthorized},

	// 5xxx: Internal System Errors
	ErrUnknown:           {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
	ErrFileStorageFailed: {Code: ErrFileStorageFailed, Message: "File storage operation failed.", Status: http.StatusInternalServerError},
	ErrStorageDisabled:   {Code: ErrStorageDisabled, Message: "Attachment storage is not configured.", Status: http.StatusNotImplemented},
}
