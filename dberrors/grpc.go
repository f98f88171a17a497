package dberrors

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FromGRPCError converts a gRPC call error into a structured error.
//
// Connectivity-class codes become transport errors; everything else is
// treated as a server failure with a mapped status code.
func FromGRPCError(err error) *Error {
	if err == nil {
		return nil
	}

	st, ok := status.FromError(err)
	if !ok {
		return Transport("rpc transport failure", err)
	}

	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
		return New(KindTransport, StatusInternalError, st.Message(), err)
	default:
		return Server(fromGRPCCode(st.Code()), st.Message())
	}
}

// GRPCStatus converts the error back into a gRPC status.
func (e *Error) GRPCStatus() *status.Status {
	return status.New(toGRPCCode(e.Code), e.Error())
}

func fromGRPCCode(code codes.Code) StatusCode {
	switch code {
	case codes.OK:
		return StatusOK
	case codes.InvalidArgument, codes.FailedPrecondition:
		return StatusInvalidArgument
	case codes.NotFound:
		return StatusNotFound
	case codes.ResourceExhausted:
		return StatusTooManyRequests
	default:
		return StatusInternalError
	}
}

func toGRPCCode(code StatusCode) codes.Code {
	switch code {
	case StatusOK:
		return codes.OK
	case StatusInvalidArgument:
		return codes.InvalidArgument
	case StatusNotFound:
		return codes.NotFound
	case StatusTooManyRequests:
		return codes.ResourceExhausted
	default:
		return codes.Internal
	}
}
