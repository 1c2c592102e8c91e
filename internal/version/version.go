// Package version holds the build version of the hanoi server.
package version

// Version is the current release version. Override at build time with:
//
//	go build -ldflags "-X github.com/AaronLay10/TowerEngine/internal/version.Version=x.y.z"
var Version = "0.3.0"
