package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

// compressibleRoutes are the routes whose responses can grow large
// enough to be worth the gzip CPU cost: query result sets and the
// OpenAPI document. /status and /logs/ingest's accepted-count ack are a
// few dozen bytes each and are left uncompressed.
var compressibleRoutes = map[string]bool{
	"/logs/query":   true,
	"/openapi.json": true,
}

// gzipResponseWriter wraps http.ResponseWriter to compress response
type gzipResponseWriter struct {
	io.Writer
	http.ResponseWriter
}

func (w gzipResponseWriter) Write(b []byte) (int, error) {
	return w.Writer.Write(b)
}

// CompressionMiddleware gzip-compresses responses from compressibleRoutes
// when the client advertises Accept-Encoding: gzip. Other routes pass
// through unmodified.
func CompressionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") || !isCompressibleRoute(r) {
			next.ServeHTTP(w, r)
			return
		}

		gz := gzip.NewWriter(w)
		defer gz.Close()

		w.Header().Set("Content-Encoding", "gzip")

		gzw := gzipResponseWriter{Writer: gz, ResponseWriter: w}
		next.ServeHTTP(gzw, r)
	})
}

func isCompressibleRoute(r *http.Request) bool {
	if route := mux.CurrentRoute(r); route != nil {
		if tmpl, err := route.GetPathTemplate(); err == nil {
			return compressibleRoutes[tmpl]
		}
	}
	return compressibleRoutes[r.URL.Path]
}
