package patient

import "errors"

var (
	ErrInvalidSex         = errors.New("sex must be one of F, M, O")
	ErrInvalidDateOfBirth = errors.New("date of birth cannot be in the future")
)
