package service

import (
	"errors"
	"fmt"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/groupcard/internal/orchestrator"
)

func TestToConnectError(t *testing.T) {
	tests := []struct {
		err  error
		want connect.Code
	}{
		{orchestrator.ErrGroupNotFound, connect.CodeNotFound},
		{fmt.Errorf("wrapped: %w", orchestrator.ErrTransactionNotFound), connect.CodeNotFound},
		{orchestrator.ErrMemberNotFound, connect.CodeNotFound},
		{orchestrator.ErrInvalidAmount, connect.CodeInvalidArgument},
		{orchestrator.ErrInvalidInput, connect.CodeInvalidArgument},
		{orchestrator.ErrMissingPaymentMethod, connect.CodeInvalidArgument},
		{orchestrator.ErrInvalidState, connect.CodeFailedPrecondition},
		{orchestrator.ErrConcurrentUpdate, connect.CodeAborted},
		{errors.New("disk full"), connect.CodeInternal},
	}
	for _, tt := range tests {
		if got := toConnectError(tt.err).Code(); got != tt.want {
			t.Errorf("toConnectError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
