package controller

import (
	"net/http"
	"strings"
)

// CORSMethods are the methods WithCORS allows when none are given.
var CORSMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions} //nolint: gochecknoglobals

// WithCORS returns a middleware that lets browsers on any origin call the API
// with the given methods (CORSMethods when empty). OPTIONS preflight requests
// are answered with 204 No Content and never reach next.
func WithCORS(next http.Handler, methods ...string) http.Handler {
	if len(methods) == 0 {
		methods = CORSMethods
	}
	allowMethods := strings.Join(methods, ", ")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Headers",
			"Content-Type, Content-Length, Accept-Encoding, accept, origin, Cache-Control, "+RequestIDHeader)
		h.Set("Access-Control-Allow-Methods", allowMethods)
		h.Set("Access-Control-Expose-Headers", RequestIDHeader)

		if r.Method == http.MethodOptions {
			h.Set("Access-Control-Max-Age", "600")
			w.WriteHeader(http.StatusNoContent)

			return
		}

		next.ServeHTTP(w, r)
	})
}
