package domain

import (
	"fmt"
	"net/mail"
	"strings"
)

const maxNameLen = 80

// SignupData é o payload de cadastro. Transiente: validado e descartado.
type SignupData struct {
	Name     string `json:"name"`
	LastName string `json:"last_name"`
	Email    string `json:"email"`
}

// FieldError descreve um problema de validação de um campo específico.
// O formato (loc/msg/type) é o contrato público do endpoint de signup.
type FieldError struct {
	Loc  string `json:"loc"`
	Msg  string `json:"msg"`
	Type string `json:"type"`
}

// ValidationError agrega os erros de campo de um payload rejeitado.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid signup data (%d field errors)", len(e.Fields))
}

// Validate devolve a lista de erros de campo; vazia quando o payload é válido.
func (d SignupData) Validate() []FieldError {
	var errs []FieldError

	errs = appendNameErrors(errs, "name", d.Name)
	errs = appendNameErrors(errs, "last_name", d.LastName)

	switch {
	case d.Email == "":
		errs = append(errs, FieldError{Loc: "email", Msg: "field required", Type: "value_error.missing"})
	case !validEmail(d.Email):
		errs = append(errs, FieldError{Loc: "email", Msg: "value is not a valid email address", Type: "value_error.email"})
	}

	return errs
}

func appendNameErrors(errs []FieldError, loc, value string) []FieldError {
	if value == "" {
		return append(errs, FieldError{Loc: loc, Msg: "field required", Type: "value_error.missing"})
	}
	if len(value) > maxNameLen {
		return append(errs, FieldError{
			Loc:  loc,
			Msg:  fmt.Sprintf("ensure this value has at most %d characters", maxNameLen),
			Type: "value_error.any_str.max_length",
		})
	}
	return errs
}

// validEmail aceita só endereços "puros" (sem display name nem <>).
func validEmail(s string) bool {
	if strings.ContainsAny(s, "<> ") {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	return addr.Address == s
}
