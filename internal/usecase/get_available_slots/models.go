package get_available_slots

import (
	"github.com/salonmate/SM-AppointmentService/internal/domain"
	"github.com/salonmate/SM-AppointmentService/pkg/types"
)

// Request модель запроса на получение доступных слотов
type Request struct {
	BusinessID   int64            // ID бизнеса
	BranchID     int64            // ID филиала
	SpecialistID int64            // ID специалиста
	ServiceIDs   []int64          // Выбранные услуги (суммарная длительность определяет длину слота)
	Date         types.DateString // Локальная дата в зоне бизнеса
}

// Response модель ответа со списком доступных слотов
type Response struct {
	Date         types.DateString       // Дата, на которую запрашивались слоты
	BusinessID   int64                  // ID бизнеса
	BranchID     int64                  // ID филиала
	SpecialistID int64                  // ID специалиста
	Timezone     string                 // IANA зона бизнеса, в которой заданы времена слотов
	Slots        []domain.AvailableSlot // Слоты в порядке возрастания времени начала
}
