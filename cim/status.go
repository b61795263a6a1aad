package cim

import (
	"strconv"
	"strings"
)

// StatusCode is a numeric CIM status code carried in the ERROR element of
// a response, per DSP0200.
type StatusCode uint32

// CIM status codes. 1-17 are the base operation codes; 20-29 belong to
// the pull operations.
const (
	StatusErrFailed                             StatusCode = 1  // a general error occurred
	StatusErrAccessDenied                       StatusCode = 2  // access was not available to the client
	StatusErrInvalidNamespace                   StatusCode = 3  // the target namespace does not exist
	StatusErrInvalidParameter                   StatusCode = 4  // an operation parameter was invalid
	StatusErrInvalidClass                       StatusCode = 5  // the class does not exist
	StatusErrNotFound                           StatusCode = 6  // the requested object could not be found
	StatusErrNotSupported                       StatusCode = 7  // the operation is not supported
	StatusErrClassHasChildren                   StatusCode = 8  // the class has subclasses
	StatusErrClassHasInstances                  StatusCode = 9  // the class has instances
	StatusErrInvalidSuperclass                  StatusCode = 10 // the superclass does not exist
	StatusErrAlreadyExists                      StatusCode = 11 // the object already exists
	StatusErrNoSuchProperty                     StatusCode = 12 // the property does not exist
	StatusErrTypeMismatch                       StatusCode = 13 // a value is incompatible with the type
	StatusErrQueryLanguageNotSupported          StatusCode = 14 // the query language is not recognized
	StatusErrInvalidQuery                       StatusCode = 15 // the query is not valid
	StatusErrMethodNotAvailable                 StatusCode = 16 // the method could not be executed
	StatusErrMethodNotFound                     StatusCode = 17 // the method does not exist
	StatusErrNamespaceNotEmpty                  StatusCode = 20 // the namespace is not empty
	StatusErrInvalidEnumerationContext          StatusCode = 21 // the enumeration context is invalid
	StatusErrInvalidOperationTimeout            StatusCode = 25 // the requested operation timeout is not supported
	StatusErrPullHasBeenAbandoned               StatusCode = 26 // the pull operation has been abandoned
	StatusErrPullCannotBeAbandoned              StatusCode = 27 // the pull operation cannot be abandoned
	StatusErrFilteredEnumerationNotSupported    StatusCode = 28 // filtered enumerations are not supported
	StatusErrContinuationOnErrorNotSupported    StatusCode = 29 // continue-on-error is not supported
	StatusErrServerLimitsExceeded               StatusCode = 30 // a server limit was exceeded
	StatusErrServerIsShuttingDown               StatusCode = 31 // the server is shutting down
)

var statusNames = map[StatusCode]string{
	StatusErrFailed:                          "CIM_ERR_FAILED",
	StatusErrAccessDenied:                    "CIM_ERR_ACCESS_DENIED",
	StatusErrInvalidNamespace:                "CIM_ERR_INVALID_NAMESPACE",
	StatusErrInvalidParameter:                "CIM_ERR_INVALID_PARAMETER",
	StatusErrInvalidClass:                    "CIM_ERR_INVALID_CLASS",
	StatusErrNotFound:                        "CIM_ERR_NOT_FOUND",
	StatusErrNotSupported:                    "CIM_ERR_NOT_SUPPORTED",
	StatusErrClassHasChildren:                "CIM_ERR_CLASS_HAS_CHILDREN",
	StatusErrClassHasInstances:               "CIM_ERR_CLASS_HAS_INSTANCES",
	StatusErrInvalidSuperclass:               "CIM_ERR_INVALID_SUPERCLASS",
	StatusErrAlreadyExists:                   "CIM_ERR_ALREADY_EXISTS",
	StatusErrNoSuchProperty:                  "CIM_ERR_NO_SUCH_PROPERTY",
	StatusErrTypeMismatch:                    "CIM_ERR_TYPE_MISMATCH",
	StatusErrQueryLanguageNotSupported:       "CIM_ERR_QUERY_LANGUAGE_NOT_SUPPORTED",
	StatusErrInvalidQuery:                    "CIM_ERR_INVALID_QUERY",
	StatusErrMethodNotAvailable:              "CIM_ERR_METHOD_NOT_AVAILABLE",
	StatusErrMethodNotFound:                  "CIM_ERR_METHOD_NOT_FOUND",
	StatusErrNamespaceNotEmpty:               "CIM_ERR_NAMESPACE_NOT_EMPTY",
	StatusErrInvalidEnumerationContext:       "CIM_ERR_INVALID_ENUMERATION_CONTEXT",
	StatusErrInvalidOperationTimeout:         "CIM_ERR_INVALID_OPERATION_TIMEOUT",
	StatusErrPullHasBeenAbandoned:            "CIM_ERR_PULL_HAS_BEEN_ABANDONED",
	StatusErrPullCannotBeAbandoned:           "CIM_ERR_PULL_CANNOT_BE_ABANDONED",
	StatusErrFilteredEnumerationNotSupported: "CIM_ERR_FILTERED_ENUMERATION_NOT_SUPPORTED",
	StatusErrContinuationOnErrorNotSupported: "CIM_ERR_CONTINUATION_ON_ERROR_NOT_SUPPORTED",
	StatusErrServerLimitsExceeded:            "CIM_ERR_SERVER_LIMITS_EXCEEDED",
	StatusErrServerIsShuttingDown:            "CIM_ERR_SERVER_IS_SHUTTING_DOWN",
}

// String returns the symbolic name, e.g. "CIM_ERR_NOT_FOUND".
func (c StatusCode) String() string {
	if name, ok := statusNames[c]; ok {
		return name
	}
	return "CIM_ERR_" + strconv.FormatUint(uint64(c), 10)
}

// Error is a server-reported CIM failure: the numeric status code from
// the ERROR element, its optional description, and any CIM_Error detail
// instances the server attached.
type Error struct {
	StatusCode  StatusCode
	Description string
	Instances   []*Instance
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.StatusCode.String())
	if e.Description != "" {
		b.WriteString(": ")
		b.WriteString(e.Description)
	}
	return b.String()
}
