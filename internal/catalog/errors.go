package catalog

import (
	"errors"
	"fmt"
)

// Catalog errors. All of them are fatal and are reported before any sampling
// or model mutation starts.
var (
	// ErrMissingShape indicates a distribution parameter required by the row's distribution is absent.
	ErrMissingShape = errors.New("catalog: missing distribution parameter")

	// ErrInvalidShape indicates a distribution parameter that is present but unusable.
	ErrInvalidShape = errors.New("catalog: invalid distribution parameter")

	// ErrUnknownDistribution indicates an unrecognized distribution name or an undefined variant.
	ErrUnknownDistribution = errors.New("catalog: unrecognized distribution")

	// ErrUnknownKind indicates no registered binding matches the parameter kind.
	ErrUnknownKind = errors.New("catalog: parameter kind not found")

	// ErrAmbiguousKind indicates two registered bindings match a kind equally well.
	ErrAmbiguousKind = errors.New("catalog: ambiguous parameter kind")

	// ErrUnresolvedInstance indicates an object reference that matches nothing in the model.
	ErrUnresolvedInstance = errors.New("catalog: model instance not found")

	// ErrDuplicateBinding indicates a model instance targeted by more than one row.
	ErrDuplicateBinding = errors.New("catalog: instance bound by more than one row")

	// ErrMalformed indicates a structural problem with the catalog file itself.
	ErrMalformed = errors.New("catalog: malformed catalog")
)

// Error attaches catalog row context to one of the sentinel errors above.
type Error struct {
	Row     int
	Kind    string
	Detail  string
	Wrapped error
}

func (e *Error) Error() string {
	msg := e.Wrapped.Error()
	if e.Row > 0 {
		msg = fmt.Sprintf("%s: row %d", msg, e.Row)
	}
	if e.Kind != "" {
		msg = fmt.Sprintf("%s (kind %q)", msg, e.Kind)
	}
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Wrapped
}

// Errorf builds an *Error for spec with a formatted detail message.
func Errorf(wrapped error, spec ParameterSpec, format string, args ...any) *Error {
	return &Error{
		Row:     spec.Row,
		Kind:    spec.Kind,
		Detail:  fmt.Sprintf(format, args...),
		Wrapped: wrapped,
	}
}

// IsCatalogError reports whether err belongs to the catalog error family.
func IsCatalogError(err error) bool {
	var ce *Error
	if errors.As(err, &ce) {
		return true
	}
	for _, sentinel := range []error{
		ErrMissingShape, ErrInvalidShape, ErrUnknownDistribution,
		ErrUnknownKind, ErrAmbiguousKind, ErrUnresolvedInstance, ErrDuplicateBinding, ErrMalformed,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
