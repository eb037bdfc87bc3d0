// Package requestlog fornece o middleware de access log do serviço:
// método, caminho, status, duração e cliente de cada requisição, já com o
// nível configurado no logger injetado.
package requestlog

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// statusRecorder captura o status escrito pelo handler seguinte.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func Middleware(log *logrus.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			log.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start).String(),
				"client":   r.RemoteAddr,
			}).Info("request")
		})
	}
}
