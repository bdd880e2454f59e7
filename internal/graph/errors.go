package graph

import (
	"errors"
	"fmt"

	"github.com/microsoftgraph/msgraph-sdk-go/models/odataerrors"
)

type ODataErrorDetails struct {
	Code    string
	Message string
	Details string
}

type ODataErrorParser struct{}

func (p *ODataErrorParser) ParseError(err error) ODataErrorDetails {
	details := ODataErrorDetails{
		Code:    "UnknownError",
		Message: err.Error(),
	}

	var odataErr *odataerrors.ODataError
	if !errors.As(err, &odataErr) {
		return details
	}

	mainErr := odataErr.GetErrorEscaped()
	if mainErr == nil {
		return details
	}

	if mainErr.GetCode() != nil {
		details.Code = *mainErr.GetCode()
	}
	if mainErr.GetMessage() != nil {
		details.Message = *mainErr.GetMessage()
	}
	if innerErr := mainErr.GetInnerError(); innerErr != nil {
		details.Details = fmt.Sprintf("InnerError: %+v", innerErr)
	}

	return details
}

// Error is a Graph failure with its OData code
type Error struct {
	Op      string
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: [%s] %s", e.Op, e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrapError(op string, err error) error {
	parser := &ODataErrorParser{}
	details := parser.ParseError(err)

	return &Error{
		Op:      op,
		Code:    details.Code,
		Message: details.Message,
		Err:     err,
	}
}
