package entity

import "fmt"

// ValidationError reports malformed caller input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports that a required on-chain resource does not exist.
type NotFoundError struct {
	Resource string
	Address  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found on-chain", e.Resource)
}

// FetchError reports a failed upstream call, HTTP or RPC.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
