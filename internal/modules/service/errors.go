package service

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrValidation       = errors.New("validation failed")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrDependentRecords = errors.New("dependent records exist")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrUnavailable      = errors.New("unavailable")
)

// Error is a client-facing failure. Kind is one of the sentinels above and
// Fields lists every violated constraint of a validation failure.
type Error struct {
	Kind   error
	Msg    string
	Fields []string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
}

func (e *Error) Unwrap() error { return e.Kind }

func notFound(what string) error {
	return &Error{Kind: ErrNotFound, Msg: what + " not found"}
}

func conflictf(format string, args ...any) error {
	return &Error{Kind: ErrConflict, Msg: fmt.Sprintf(format, args...)}
}

func invalid(msg string) error {
	return &Error{Kind: ErrValidation, Msg: msg, Fields: []string{msg}}
}

// fieldErrors collects validation messages in order.
type fieldErrors []string

func (f *fieldErrors) add(msg string) { *f = append(*f, msg) }

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &Error{Kind: ErrValidation, Msg: strings.Join(f, "; "), Fields: f}
}

// mapNotFound turns a missing row into a NotFound error for what.
func mapNotFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(what)
	}
	return err
}
