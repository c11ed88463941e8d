package version

// Build holds the build identifier, injected via -ldflags. Default "dev".
var Build = "dev"

// String returns the program name with Build.
func String() string {
	return "wgadmin " + Build
}
