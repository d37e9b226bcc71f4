// Package version holds the iamfparam build metadata, injected with -ldflags -X at build time.
package version

//nolint:gochecknoglobals // Set via ldflags at build time.
var (
	version = "0.1.0-dev"
	name    = "iamfparam"
	commit  = "undefined"
	date    = "undefined"
)

// Commit returns the commit iamfparam was built from.
func Commit() string {
	return commit
}

// Version returns the iamfparam release version.
func Version() string {
	return version
}

// Name returns the binary name, also used as the application name for logging.
func Name() string {
	return name
}

// Date returns the iamfparam build date.
func Date() string {
	return date
}
