package api

import "net/http"

// IndexHandler redireciona a raiz para a página do projeto.
func IndexHandler(projectURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, projectURL, http.StatusFound)
	}
}
