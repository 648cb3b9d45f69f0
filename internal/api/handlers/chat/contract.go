package chat

import (
	"context"

	"github.com/m04kA/SMC-AppointmentAgent/internal/usecase/handle_decision"
	processMessage "github.com/m04kA/SMC-AppointmentAgent/internal/usecase/process_message"
)

type ProcessMessageUseCase interface {
	Execute(ctx context.Context, req *processMessage.Request) (*handle_decision.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
