package web

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/spf13/afero"
)

// FS contains all embedded static assets.
// The patterns are relative to this file's directory (the 'web' directory).
//
//go:embed static
var FS embed.FS

// Static asset sources.
const (
	SourceEmbed = "embed"
	SourceDisk  = "disk"
)

// StaticFS returns the asset filesystem rooted at the static directory. The
// embed source serves the compiled-in copy; disk serves dir so edits show up
// without a rebuild.
func StaticFS(source, dir string) (afero.Fs, error) {
	switch source {
	case SourceEmbed, "":
		sub, err := fs.Sub(FS, "static")
		if err != nil {
			return nil, fmt.Errorf("open embedded assets: %w", err)
		}
		return afero.NewReadOnlyFs(afero.FromIOFS{FS: sub}), nil
	case SourceDisk:
		ok, err := afero.DirExists(afero.NewOsFs(), dir)
		if err != nil || !ok {
			return nil, fmt.Errorf("static directory %q not found", dir)
		}
		return afero.NewReadOnlyFs(afero.NewBasePathFs(afero.NewOsFs(), dir)), nil
	default:
		return nil, fmt.Errorf("unknown static source %q", source)
	}
}

// StaticHandler serves files from assets under the given URL prefix.
func StaticHandler(prefix string, assets afero.Fs) echo.HandlerFunc {
	fileServer := http.FileServer(http.FS(afero.NewIOFS(assets)))
	return echo.WrapHandler(http.StripPrefix(prefix, fileServer))
}
