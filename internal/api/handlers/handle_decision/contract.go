package handle_decision

import (
	"context"

	handleDecision "github.com/m04kA/SMC-AppointmentAgent/internal/usecase/handle_decision"
)

type HandleDecisionUseCase interface {
	Execute(ctx context.Context, req *handleDecision.Request) (*handleDecision.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
