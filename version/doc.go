// Package version reports the build version of the beankit binary.
//
// Version and commit are set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/beankit/version.Version=1.0.0"
//
// Unset values fall back to the module build info.
package version
