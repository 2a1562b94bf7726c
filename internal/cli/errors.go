// Package cli implements the command-line interface.
package cli

// Error codes for structured error responses.
// These codes are stable and can be relied upon by agents.
const (
	// Configuration errors
	ErrConfigInvalid    = "CONFIG_INVALID"
	ErrMetabaseNotSetup = "METABASE_NOT_CONFIGURED"

	// Metabase API errors
	ErrMetabaseUnreachable = "METABASE_UNREACHABLE"
	ErrDashboardNotFound   = "DASHBOARD_NOT_FOUND"

	// Fixture errors
	ErrFixtureInvalid = "FIXTURE_INVALID"

	// File errors
	ErrFileWriteError = "FILE_WRITE_ERROR"

	// Input errors
	ErrInvalidInput    = "INVALID_INPUT"
	ErrMissingArgument = "MISSING_ARGUMENT"

	// General errors
	ErrInternal = "INTERNAL_ERROR"
)
