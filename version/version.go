package version

// version is set at build time with -ldflags "-X github.com/factorysh/selftest/version.version=..."
var version = "dev"

// Version returns the build version
func Version() string {
	return version
}
