package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-AppointmentAgent/internal/domain"
)

// Request модель запроса на получение свободных слотов
type Request struct {
	Date       string // YYYY-MM-DD; пусто - сегодня
	Count      int    // 0 - значение по умолчанию
	ServiceKey string // ключ услуги; пусто - длительность по умолчанию
}

// Response модель ответа со списком свободных слотов
type Response struct {
	Date           time.Time     // День в часовом поясе бизнеса
	WorkDay        bool          // false, если день нерабочий
	Slots          []domain.Slot // Свободные слоты по возрастанию
	IntegrityScore int           // Фрагментация календаря этого дня, 0..100
}
