package types

// Version is the canonical project version.
// The CLI and the manifest wire contract share this version.
const Version = "0.4.2"
