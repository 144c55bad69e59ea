package domain

import "errors"

var ErrForbidden = errors.New("not authorized")
var ErrInvalidID = errors.New("invalid id")
var ErrInvalidInput = errors.New("invalid input")
