package handler

const (
	errInternalServer  = "Internal server error"
	errWorkoutNotFound = "Workout not found"
	errInvalidDay      = "Invalid date, expected YYYY-MM-DD"
	errInvalidPayload  = "Request body must be a JSON object"
	errUnknownAction   = "Unknown action"
	errTokenInvalid    = "Token is invalid or expired"
	errInvalidEmail    = "A valid email address is required"

	noticeSignIn     = "Please sign in to see your workouts."
	noticeCheckInbox = "Check your inbox for a sign-in link."
)
