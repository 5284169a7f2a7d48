package entities

import (
	"errors"
	"fmt"
)

// FailureKind класс сетевой ошибки
type FailureKind string

const (
	FailureTransport FailureKind = "transport"
	FailureTimeout   FailureKind = "timeout"
	FailureStatus    FailureKind = "status"
	FailureService   FailureKind = "service"
	FailureDecode    FailureKind = "decode"
)

// NetworkFailure ошибка обращения к удаленному сервису.
// Оркестратор переключается на локальное сжатие только для этого типа ошибок.
type NetworkFailure struct {
	Op         string
	Kind       FailureKind
	StatusCode int
	Err        error
}

func (e *NetworkFailure) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s (HTTP %d): %v", e.Op, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *NetworkFailure) Unwrap() error {
	return e.Err
}

// NewNetworkFailure создает сетевую ошибку
func NewNetworkFailure(op string, kind FailureKind, statusCode int, err error) *NetworkFailure {
	return &NetworkFailure{Op: op, Kind: kind, StatusCode: statusCode, Err: err}
}

// IsNetworkFailure проверяет, является ли ошибка сетевой
func IsNetworkFailure(err error) bool {
	var nf *NetworkFailure
	return errors.As(err, &nf)
}
