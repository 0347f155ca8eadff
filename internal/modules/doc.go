// Package modules contains the self-contained application features.
//
// Each subdirectory is a module implementing `module.Module`. Modules are
// listed in `internal/app/modules.go` and booted by the server, which mounts
// each one under /<name>.
package modules
