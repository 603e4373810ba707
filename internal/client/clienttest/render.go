package clienttest

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/routegroup"
)

// logf adapts a printf-style function to the rest logger backend.
type logf func(format string, args ...any)

func (f logf) Logf(format string, args ...any) { f(format, args...) }

func newRouter() *routegroup.Bundle {
	router := routegroup.New(http.NewServeMux())
	router.Use(
		rest.Recoverer(logf(log.Printf)),
		rest.Ping,
		rest.SizeLimit(64*1024),
	)
	return router
}

func render(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
