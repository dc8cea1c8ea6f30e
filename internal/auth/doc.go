// Package auth provides authentication and authorization for the
// application.
//
// Authentication is local only: username/password against the database
// with Argon2id password hashing. Authorization is role based: every user
// has exactly one role, roles carry permissions, and handlers are
// protected with permission middleware.
//
// The Service type answers permission questions (HasPermission,
// HasAnyPermission, HasAllPermissions, GetUserPermissions), and the
// Require* middleware functions protect Fiber routes:
//
//	app.Get("/api/v1/documents",
//	    auth.RequirePermission(authService, auth.PermDocumentView),
//	    handler,
//	)
package auth
