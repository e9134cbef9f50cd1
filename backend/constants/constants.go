package constants

// 接口返回文案，集中维护便于各 handler 复用。
// User facing messages shared by the handlers.
const (
	MessageUserCreated   = "User created successfully"
	MessageLoginOK       = "Login successful"
	MessageLogoutOK      = "Logout successful"
	MessagePageNotFound  = "Page not found"
	MessageSettingsSaved = "Settings saved"

	ErrUnauthorized        = "Authentication credentials were not provided."
	ErrInvalidToken        = "Invalid token."
	ErrTokenExpired        = "Token has expired."
	ErrInvalidCredentials  = "Invalid email or password"
	ErrUserExists          = "A user with that username or email already exists"
	ErrNotFound            = "We could not find what you're looking for :/"
	ErrUnsupportedFormat   = "Unsupported file format"
	ErrEmptyContent        = "The content provided is empty. Please ensure that there is text or data present before proceeding."
	ErrUpstream            = "The model provider failed to answer: %v"
	ErrProviderUnavailable = "Provider '%s' is not configured"
)

// Socket event names.
const (
	EventStart            = "start"
	EventStarted          = "started"
	EventMessage          = "message"
	EventResponse         = "response"
	EventResponseFinished = "responseFinished"
	EventResponseError    = "responseError"
)

// Context keys set by the gin middleware.
const (
	ContextUserKey      = "user"
	ContextTokenKey     = "token"
	ContextRequestIDKey = "request_id"
)
