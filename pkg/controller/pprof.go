package controller

import (
	"net/http"
	"net/http/pprof"
	"strings"
)

// PprofMux returns a ServeMux serving the net/http/pprof handlers below
// prefix, e.g. "/debug/pprof/". The mux is meant to be mounted at prefix as is,
// without stripping it, because pprof.Index resolves profile names from the full path.
func PprofMux(prefix string) *http.ServeMux {
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	mux := http.NewServeMux()
	mux.HandleFunc(prefix, pprof.Index)
	mux.HandleFunc(prefix+"cmdline", pprof.Cmdline)
	mux.HandleFunc(prefix+"profile", pprof.Profile)
	mux.HandleFunc(prefix+"symbol", pprof.Symbol)
	mux.HandleFunc(prefix+"trace", pprof.Trace)

	return mux
}
