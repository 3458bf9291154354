// Package web holds the control page served by the monitor.
package web

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
)

// DevEnv names the variable that makes GetAssets serve the page from the
// source tree, so that edits show up without rebuilding.
const DevEnv = "TIMEWARP_MONITOR_DEV"

//go:embed dist/*
var dist embed.FS

// GetAssets returns the file system the control page is served from.
func GetAssets() http.FileSystem {
	if devMode() {
		return devAssets()
	}

	sub, err := fs.Sub(dist, "dist")
	if err != nil {
		panic(err)
	}

	return http.FS(sub)
}

func devAssets() http.FileSystem {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		panic("cannot locate the web package source")
	}

	dir := filepath.Join(filepath.Dir(file), "dist")
	fmt.Fprintf(os.Stderr, "Serving monitor assets from %s\n", dir)

	return http.Dir(dir)
}

// devMode reads DevEnv. Unset or unparsable values mean release mode.
func devMode() bool {
	on, err := strconv.ParseBool(os.Getenv(DevEnv))
	return err == nil && on
}
