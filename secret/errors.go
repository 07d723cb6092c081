package secret

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors.
var (
	ErrMissingEnv       = errors.New("secret: missing environment variable")
	ErrUnknownProvider  = errors.New("secret: provider is not registered")
	ErrEmptySecret      = errors.New("secret: empty value")
	ErrInvalidRef       = errors.New("secret: invalid reference")
	ErrDuplicateFactory = errors.New("secret: provider already registered")
)

// MissingEnvError lists environment variables referenced without a default.
type MissingEnvError struct {
	Names []string
}

func (e *MissingEnvError) Error() string {
	return fmt.Sprintf("secret: missing required environment variables: %s", strings.Join(e.Names, ", "))
}

// Is makes MissingEnvError match ErrMissingEnv.
func (e *MissingEnvError) Is(target error) bool {
	return target == ErrMissingEnv
}
