package network

import (
	"context"
	"net"
	"net/url"
	"os/exec"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

// ErrType represents network error type
type ErrType string

const (
	Nil ErrType = "Nil"

	// no such host
	NoSuchHost ErrType = "No such host"

	// http: server gave HTTP response to HTTPS client
	HTTPSClientHTTPServer ErrType = "HTTP response to HTTPS client"

	// No connection could be made because the target machine actively refused it
	Refused ErrType = "Connection refused"

	// context deadline exceeded (Client.timeout exceeded while awaiting headers)
	Timeout ErrType = "Timeout"

	// context canceled, the run was interrupted while the item was in progress
	Canceled ErrType = "Canceled"

	// exec: executable file not found in $PATH
	NotFound ErrType = "Executable not found"

	Unknown ErrType = "Unknown"
)

// GetErrType returns network error type.
//
// Inspired by https://stackoverflow.com/a/67647035
func GetErrType(err error) ErrType {
	if err == nil {
		return Nil
	}
	if errors.Is(err, context.Canceled) {
		return Canceled
	}
	if errors.Is(err, exec.ErrNotFound) {
		return NotFound
	}
	for {
		if err, ok := err.(*net.DNSError); ok && err.Err == "no such host" {
			return NoSuchHost
		}
		errMsg := "http: server gave HTTP response to HTTPS client"
		if err, ok := err.(*url.Error); ok && err.Err.Error() == errMsg {
			return HTTPSClientHTTPServer
		}
		if err, ok := err.(syscall.Errno); ok {
			if err == 10061 || err == syscall.ECONNREFUSED {
				return Refused
			}
		}
		if err, ok := err.(net.Error); ok && err.Timeout() {
			return Timeout
		}
		unwrap, ok := err.(interface{ Unwrap() error })
		if !ok {
			return Unknown
		}
		if err = unwrap.Unwrap(); err == nil {
			return Unknown
		}
	}
}

// Reason returns short description of network <err>, or it's full text if type of the error is unknown
func Reason(err error) string {
	errType := GetErrType(err)
	return lo.Ternary(errType == Unknown, err.Error(), string(errType))
}
