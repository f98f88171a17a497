package dberrors

import "strings"

// ShouldRefreshRoute reports whether a partition failure indicates the
// cached route for its tables is stale and must be evicted.
//
// The server currently signals a moved table only through its message
// text, so this matches on it verbatim.
// TODO: switch to a structured error code once the server exposes one.
func ShouldRefreshRoute(code StatusCode, msg string) bool {
	return code == StatusInvalidArgument &&
		strings.Contains(msg, "Table") &&
		strings.Contains(msg, "not found")
}
