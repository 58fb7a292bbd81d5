package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	grpccodes "google.golang.org/grpc/codes"
)

// Code is the type representing a namespace error code.
type Code[MT any] struct {
	Code     uint16
	Name     string
	GrpcCode grpccodes.Code
}

// New creates a new error with the given code and the message
func (c Code[MT]) New(msg string, args ...any) TypedError[MT] {
	return &ErrorImpl[MT]{
		code:  c,
		cause: fmt.Errorf(msg, args...),
	}
}

// Wrap creates a new Error with the given code and the cause error
func (c Code[MT]) Wrap(cause error) TypedError[MT] {
	return &ErrorImpl[MT]{
		code:  c,
		cause: cause,
	}
}

func (c Code[MT]) String() string {
	return fmt.Sprintf("%s (%d)", c.Name, c.Code)
}

// Is reports whether err, or the first coded error in its chain, carries this code.
func (c Code[MT]) Is(err error) bool {
	var e Error
	if !stderrors.As(err, &e) {
		return false
	}
	return e.Code() == c.Code
}

type Error interface {
	error
	Log() *log.Entry
	Code() uint16
	CodeName() string
	GrpcCode() grpccodes.Code
	Metadata() map[string]string
}

type TypedError[MT any] interface {
	Error
	WithMetadata(MT) TypedError[MT]
}

// ErrorImpl is the default concrete implementation of TypedError.
type ErrorImpl[MT any] struct {
	code     Code[MT]
	cause    error
	metadata MT
}

func (e *ErrorImpl[MT]) Log() *log.Entry {
	return log.WithField("name", e.code.Name).
		WithField("code", e.code.Code).
		WithField("metadata", e.metadata)
}

func (e *ErrorImpl[MT]) Metadata() map[string]string {
	// convert any metadata to map[string]string
	metadata := make(map[string]string)
	buf, err := json.Marshal(e.metadata)
	if err == nil {
		var genericMap map[string]any
		if err := json.Unmarshal(buf, &genericMap); err == nil {
			for k, v := range genericMap {
				vStr := ""
				if v != nil {
					vStr = fmt.Sprintf("%v", v)
				}
				metadata[k] = vStr
			}
		}
	}
	return metadata
}

func (e *ErrorImpl[MT]) GrpcCode() grpccodes.Code {
	return e.code.GrpcCode
}

func (e *ErrorImpl[MT]) Code() uint16 {
	return e.code.Code
}

func (e *ErrorImpl[MT]) CodeName() string {
	return e.code.Name
}

// Error() implements the error interface.
func (e *ErrorImpl[MT]) Error() string {
	return fmt.Sprintf("%s: %s", e.code.String(), e.cause.Error())
}

func (e *ErrorImpl[MT]) Unwrap() error {
	return e.cause
}

func (e *ErrorImpl[MT]) WithMetadata(metadata MT) TypedError[MT] {
	e.metadata = metadata
	return e
}

type AssetIdMetadata struct {
	LocalId  uint32 `json:"local_id"`
	Location string `json:"location,omitempty"`
}

type LocationMetadata struct {
	Location string `json:"location"`
}

type BalanceMetadata struct {
	Account   string `json:"account"`
	Currency  string `json:"currency"`
	Requested uint64 `json:"requested"`
	Available uint64 `json:"available"`
}

type DestinationMetadata struct {
	Destination string `json:"destination"`
	Version     uint8  `json:"version,omitempty"`
}

type ReserveMetadata struct {
	Asset  string `json:"asset"`
	Origin string `json:"origin"`
}

type EnqueueMetadata struct {
	Destination string `json:"destination"`
	Account     string `json:"account"`
	Refunded    uint64 `json:"refunded"`
}

type TrapMetadata struct {
	Hash string `json:"hash"`
}

type OriginMetadata struct {
	Caller string `json:"caller"`
}

var INTERNAL_ERROR = Code[map[string]any]{0, "INTERNAL_ERROR", grpccodes.Internal}

var ALREADY_REGISTERED = Code[AssetIdMetadata]{
	1,
	"ALREADY_REGISTERED",
	grpccodes.AlreadyExists,
}

var NOT_REGISTERED = Code[AssetIdMetadata]{2, "NOT_REGISTERED", grpccodes.NotFound}

var INSUFFICIENT_FUNDS = Code[BalanceMetadata]{
	3,
	"INSUFFICIENT_FUNDS",
	grpccodes.FailedPrecondition,
}

var UNREACHABLE_DESTINATION = Code[DestinationMetadata]{
	4,
	"UNREACHABLE_DESTINATION",
	grpccodes.Unavailable,
}

var UNRESOLVED_RESERVE = Code[ReserveMetadata]{
	5,
	"UNRESOLVED_RESERVE",
	grpccodes.InvalidArgument,
}

var ENQUEUE_FAILED = Code[EnqueueMetadata]{6, "ENQUEUE_FAILED", grpccodes.Unavailable}
var BAD_ORIGIN = Code[OriginMetadata]{7, "BAD_ORIGIN", grpccodes.PermissionDenied}

var UNTRUSTED_RESERVE = Code[ReserveMetadata]{
	8,
	"UNTRUSTED_RESERVE",
	grpccodes.PermissionDenied,
}

var NOT_TRAPPED = Code[TrapMetadata]{9, "NOT_TRAPPED", grpccodes.NotFound}
var INVALID_ASSETS = Code[any]{10, "INVALID_ASSETS", grpccodes.InvalidArgument}
var INVALID_LOCATION = Code[LocationMetadata]{11, "INVALID_LOCATION", grpccodes.InvalidArgument}

var UNSUPPORTED_VERSION = Code[DestinationMetadata]{
	12,
	"UNSUPPORTED_VERSION",
	grpccodes.Unimplemented,
}
