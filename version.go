package schemable

// Version is the release of the schemable module.
const Version = "0.4.0"
