package cimxml

import "fmt"

// XMLParseError is a lower-level XML syntax violation in a response body.
type XMLParseError struct {
	Msg string
	Err error
}

func (e *XMLParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("XML syntax error: %s: %v", e.Msg, e.Err)
	}
	return "XML syntax error: " + e.Msg
}

func (e *XMLParseError) Unwrap() error { return e.Err }

// CIMXMLParseError is a violation of the CIM-XML DTD in a syntactically
// well-formed response: wrong envelope, missing required element or
// attribute, unexpected nesting.
type CIMXMLParseError struct {
	Msg string
}

func (e *CIMXMLParseError) Error() string {
	return "CIM-XML error: " + e.Msg
}

// HeaderParseError is an invalid or missing HTTP header on a response,
// e.g. an unsupported Content-Type.
type HeaderParseError struct {
	Msg string
}

func (e *HeaderParseError) Error() string {
	return "HTTP header error: " + e.Msg
}

func cimxmlErrorf(format string, args ...any) *CIMXMLParseError {
	return &CIMXMLParseError{Msg: fmt.Sprintf(format, args...)}
}
