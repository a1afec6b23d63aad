package entities

import "errors"

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidOrder      = errors.New("invalid order")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrNoPriorState      = errors.New("no prior state")
	ErrReauthRequired    = errors.New("reauthentication required")
	ErrInvalidCredential = errors.New("invalid credential")
	ErrSplitImbalance    = errors.New("split does not preserve totals")
	ErrWriteDead         = errors.New("write moved to dead list")
)

// Kind — класс ошибки, определяющий поведение вызывающей стороны:
// Validation и Authorization отдаются сразу, Connectivity уходит
// в очередь отложенных записей, NotInitialized переводит слой
// в режим чтения из кеша.
type Kind string

const (
	KindValidation     Kind = "validation"
	KindAuthorization  Kind = "authorization"
	KindConnectivity   Kind = "connectivity"
	KindConflict       Kind = "conflict"
	KindNotInitialized Kind = "not_initialized"
	KindInternal       Kind = "internal"
)

type kindError struct {
	kind Kind
	err  error
}

func (e *kindError) Error() string { return e.err.Error() }
func (e *kindError) Unwrap() error { return e.err }

func WithKind(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &kindError{kind: kind, err: err}
}

func KindOf(err error) Kind {
	var ke *kindError
	if errors.As(err, &ke) {
		return ke.kind
	}
	switch {
	case errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrNoPriorState),
		errors.Is(err, ErrInvalidOrder),
		errors.Is(err, ErrSplitImbalance):
		return KindValidation
	case errors.Is(err, ErrReauthRequired), errors.Is(err, ErrInvalidCredential):
		return KindAuthorization
	}
	return KindInternal
}

func IsConnectivity(err error) bool {
	return KindOf(err) == KindConnectivity
}
