// Package auth implements credential verification, JWT session
// issuance, role-based access guards, and the password-reset token
// lifecycle for the soundclip applications.
//
// The package is transport agnostic: command handlers receive payloads
// and a context, persistence goes through the RepositoryManager, and
// email delivery goes through the Notifier collaborator. HTTP glue
// lives in http.go and http_controller.go, the bearer-token middleware
// in middleware/jwtware.
package auth
