package version

// Version is the current jaga release.
const Version = "0.1.0"
