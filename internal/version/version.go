// Package version holds figterm's integration-protocol version number.
package version

// Integration is the numeric version printed by -v/--version and exported
// as FIG_TERM_VERSION. Current: 3, matching the hook-JSON field spelling
// this version corresponds to.
const Integration = 3
