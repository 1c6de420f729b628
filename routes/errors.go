package routes

import "littlelemon/pkg/apperr"

var (
	errNotFound = apperr.NotFound("not found")
	errMethod   = apperr.MethodNotAllowed("method not allowed")
)
