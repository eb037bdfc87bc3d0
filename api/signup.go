package api

import (
	"encoding/json"
	"errors"
	"net/http"

	usersapp "stock-market-service/users/application"
	usersdomain "stock-market-service/users/domain"

	"github.com/sirupsen/logrus"
)

// SignupHandler valida o payload, cadastra o usuário e devolve só a api_key
// (nunca ecoa nome/e-mail de volta).
func SignupHandler(svc usersapp.SignupService, log *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var data usersdomain.SignupData
		if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}

		user, err := svc.Signup(r.Context(), data)

		var vErr *usersdomain.ValidationError
		switch {
		case errors.As(err, &vErr):
			writeError(w, http.StatusBadRequest, vErr.Fields)
		case errors.Is(err, usersdomain.ErrDuplicateEmail):
			writeError(w, http.StatusUnauthorized, "Email address already registered")
		case err != nil:
			log.WithError(err).Error("signup failed")
			writeError(w, http.StatusInternalServerError, "Internal server error")
		default:
			writeJSON(w, http.StatusCreated, map[string]string{"api_key": user.APIKey})
		}
	}
}
