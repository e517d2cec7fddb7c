/*
Package errs provides custom error types and application-level error code constants.

These codes identify specific business or system errors both internally and in
responses sent to clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON is malformed.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates trailing content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrRequestEntityTooLarge indicates that the request body exceeded the server limit.
	ErrRequestEntityTooLarge = 1005

	// ErrRateLimitExceeded indicates that the request rate exceeded the configured limit.
	ErrRateLimitExceeded = 1006
)

// 2xxx: Chat and Attachment Business Logic Errors
const (
	// ErrMessageNotFound indicates that the requested chat message does not exist.
	ErrMessageNotFound = 2101

	// ErrMessageContentTooLong indicates that the message body exceeded the length limit.
	ErrMessageContentTooLong = 2102

	// ErrPageInvalid indicates an invalid history page number.
	ErrPageInvalid = 2103

	// ErrAttachmentTypeInvalid indicates a file name or MIME type outside the allowed set.
	ErrAttachmentTypeInvalid = 2201

	// ErrFileSizeTooLarge indicates that the attachment exceeded the size limit.
	ErrFileSizeTooLarge = 2202

	// ErrAttachmentKeyInvalid indicates a storage key outside the chat attachment namespace.
	ErrAttachmentKeyInvalid = 2203
)

// 3xxx: User and Session Errors
const (
	// ErrUserNotFound indicates that no user matched the given identifier.
	ErrUserNotFound = 3001

	// ErrUserAlreadyExists indicates that the email or nickname is already taken.
	ErrUserAlreadyExists = 3002

	// ErrInvalidCredentials indicates an email/password mismatch on login.
	ErrInvalidCredentials = 3003

	// ErrInvalidEmail indicates an email that failed validation.
	ErrInvalidEmail = 3004

	// ErrInvalidNickname indicates a nickname that failed validation.
	ErrInvalidNickname = 3005

	// ErrInvalidPassword indicates a password outside the accepted length range.
	ErrInvalidPassword = 3006

	// ErrAlreadyLoggedIn indicates a register/login attempt with a valid session token.
	ErrAlreadyLoggedIn = 3007

	// ErrUnauthorized indicates a missing or invalid identity token.
	ErrUnauthorized = 3008
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified internal server error.
	ErrUnknown = 5000

	// ErrFileStorageFailed indicates a failure talking to the attachment storage backend.
	ErrFileStorageFailed = 5001

	// ErrStorageDisabled indicates that no attachment storage backend is configured.
	ErrStorageDisabled = 5002
)
