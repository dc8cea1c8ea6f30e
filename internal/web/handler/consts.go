package handler

const (
	// RouterRootPath is the root path of a route group.
	RouterRootPath = "/"

	// APIPrefix is the base path of the JSON API.
	APIPrefix = "/api/v1"

	// ErrNilACDFatalLogMsg is used if the app, cfg or db pointer is nil.
	ErrNilACDFatalLogMsg = "app, cfg or db is nil"
)
