package process_message

import "github.com/m04kA/SMC-AppointmentAgent/internal/integrations/brain"

const (
	MaxMessageLength = 4000
	MaxHistoryTurns  = 50
)

// Request входящее сообщение чата
type Request struct {
	SessionID string
	// Contact идентичность вызывающего, если известна транспорту
	Contact string
	Message string
	History []brain.ChatMessage
}
