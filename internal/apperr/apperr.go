package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error es el error tipado que viaja desde repos/servicios hasta el
// handler, que lo mapea a {success:false, message}.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

func NotFound(msg string) *Error     { return New(http.StatusNotFound, msg) }
func Unauthorized(msg string) *Error { return New(http.StatusUnauthorized, msg) }
func Forbidden(msg string) *Error    { return New(http.StatusForbidden, msg) }
func Validation(msg string) *Error   { return New(http.StatusBadRequest, msg) }
func Conflict(msg string) *Error     { return New(http.StatusConflict, msg) }

func Validationf(format string, args ...any) *Error {
	return Validation(fmt.Sprintf(format, args...))
}

// StatusOf devuelve el status HTTP de un error; 500 si no es tipado.
func StatusOf(err error) int {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Status
	}
	return http.StatusInternalServerError
}

// Mensajes compartidos entre handlers y servicios.
const (
	MsgArticleNotFound    = "article not found"
	MsgCategoryNotFound   = "category not found"
	MsgUserNotFound       = "user not found"
	MsgInvalidCredential  = "invalid credentials"
	MsgInvalidToken       = "invalid or expired token"
	MsgUserAlreadyExists  = "user with this email already exists"
	MsgPhoneAlreadyExists = "user with this phone already exists"
	MsgNotArticleOwner    = "you are not authorized to modify this article"
)
