package handle_decision

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("handle_decision: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase (хранилище, блокировка)
	ErrInternal = errors.New("handle_decision: internal error")

	// ErrUnparsableDateTime дата или время записи не распознаны
	ErrUnparsableDateTime = errors.New("handle_decision: unparsable date or time")
)

// внутренние сигналы для отката транзакции
var (
	errSlotConflict        = errors.New("handle_decision: slot conflict")
	errNoActiveAppointment = errors.New("handle_decision: no active appointment")
	errOutsideHours        = errors.New("handle_decision: outside business hours")
)
