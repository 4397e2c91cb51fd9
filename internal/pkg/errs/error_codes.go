/*
Package errs provides custom error types and application-level error code constants.

These error codes identify specific business or system errors both internally
within the server and in communication with clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON format is incorrect (e.g., syntax error).
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained extra content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrFormParseFailed indicates failure to parse multipart or URL-encoded form data.
	ErrFormParseFailed = 1005

	// ErrRequestEntityTooLarge indicates that the request body size exceeded the server limit.
	ErrRequestEntityTooLarge = 1006

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1007
)

// 2xxx: Message and Attachment Business Logic Errors
const (
	// ErrMessageEmpty indicates that a message carried neither text content nor an attachment.
	ErrMessageEmpty = 2101

	// ErrMessageContentTooLong indicates that the message content exceeded the maximum length limit.
	ErrMessageContentTooLong = 2102

	// ErrReceiverNotFound indicates that the named message receiver is not a known user.
	ErrReceiverNotFound = 2103

	// ErrFileSizeTooLarge indicates that an uploaded file exceeded the size limit.
	ErrFileSizeTooLarge = 2201

	// ErrFileTypeInvalid indicates that an uploaded file has a disallowed type or extension.
	ErrFileTypeInvalid = 2202

	// ErrFileMissing indicates that a multipart upload request carried no file part.
	ErrFileMissing = 2203
)

// 3xxx: User, Session, and Security Errors
const (
	// ErrInvalidUsername indicates that the supplied username failed validation.
	ErrInvalidUsername = 3101

	// ErrInvalidEmail indicates that the supplied email address failed validation.
	ErrInvalidEmail = 3102

	// ErrInvalidPassword indicates that the supplied password failed validation.
	ErrInvalidPassword = 3103

	// ErrDuplicateEmail indicates that the email address is already registered.
	ErrDuplicateEmail = 3104

	// ErrInvalidCredentials indicates that the email/password pair did not match an account.
	// The same code is used for unknown emails and wrong passwords on purpose.
	ErrInvalidCredentials = 3105

	// ErrUserNotFound indicates that the referenced user account does not exist.
	ErrUserNotFound = 3106

	// ErrUnauthorized indicates a missing, invalid, or expired bearer token.
	ErrUnauthorized = 3107
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000

	// ErrStoreFailure indicates that the underlying persistence layer was unavailable.
	ErrStoreFailure = 5001

	// ErrFileStorageFailed indicates that writing to the blob storage backend failed.
	ErrFileStorageFailed = 5002
)
