package service

import (
	"errors"

	"connectrpc.com/connect"

	"github.com/mmynk/groupcard/internal/orchestrator"
)

// toConnectError maps orchestrator errors to Connect codes.
func toConnectError(err error) *connect.Error {
	switch {
	case orchestrator.IsNotFound(err):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, orchestrator.ErrInvalidState):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case orchestrator.IsInvalidInput(err):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, orchestrator.ErrConcurrentUpdate):
		return connect.NewError(connect.CodeAborted, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}
