package controller

import (
	"net/http"
	"net/http/pprof"
)

// PprofPath is where PprofMux serves the profiles. pprof.Index resolves
// profile names relative to this exact prefix.
const PprofPath = "/debug/pprof/"

// PprofMux returns an http.ServeMux with the net/http/pprof handlers
// registered under PprofPath. Mount it on the same path of the main mux.
func PprofMux() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc(PprofPath, pprof.Index)
	mux.HandleFunc(PprofPath+"cmdline", pprof.Cmdline)
	mux.HandleFunc(PprofPath+"profile", pprof.Profile)
	mux.HandleFunc(PprofPath+"symbol", pprof.Symbol)
	mux.HandleFunc(PprofPath+"trace", pprof.Trace)

	return mux
}
