package models

import "errors"

var ErrNotFound = errors.New("requested resource not found")
var ErrForbidden = errors.New("user does not have permission to access this resource")
var ErrUnauthenticated = errors.New("missing or invalid credentials")
var ErrInvalidCredentials = errors.New("invalid credentials") // username or password does not match database record
var ErrValidation = errors.New("request parameter out of range")

// ErrStatusConflict indicates an operation that is illegal in the route's
// current status: forming a non-draft, editing a frozen line item, repeating
// a terminal transition.
var ErrStatusConflict = errors.New("operation not allowed in current route status")

// ErrEmptyRoute indicates an attempt to form a draft that has no line items.
var ErrEmptyRoute = errors.New("route has no commands")

// ErrResultAlreadySet indicates that a calculation result has already been
// written for the route; results are write-once.
var ErrResultAlreadySet = errors.New("route result already set")

// ErrorResponse is the JSON body returned for every non-success response.
type ErrorResponse struct {
	Message string `json:"message"`
}
