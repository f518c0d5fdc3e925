package complete_appointment

import "github.com/salonmate/SM-AppointmentService/internal/workflow"

// Action действие процедуры завершения записи
type Action string

const (
	// ActionBegin возвращает первый шаг процедуры без побочных эффектов
	ActionBegin Action = "begin"

	// ActionAttachAfterEvidence регистрирует загрузку фото "после"
	ActionAttachAfterEvidence Action = "attach-after-evidence"

	// ActionSkipAfterEvidence пропускает фотофиксацию и завершает запись
	ActionSkipAfterEvidence Action = "skip-after-evidence"

	// ActionFinish завершает запись после загрузки фото
	ActionFinish Action = "finish"
)

// ParseAction парсит действие из строки
func ParseAction(s string) (Action, bool) {
	switch Action(s) {
	case ActionBegin, ActionAttachAfterEvidence, ActionSkipAfterEvidence, ActionFinish:
		return Action(s), true
	default:
		return "", false
	}
}

// Request модель запроса действия процедуры завершения
type Request struct {
	AppointmentID int64
	UserID        int64
	Action        Action
}

// Response модель ответа с текущим состоянием процедуры
type Response struct {
	AppointmentID int64
	Status        string

	// Следующий шаг процедуры; DONE после завершения
	NextStep workflow.Step

	// Токен загрузки фото для attach-after-evidence
	UploadToken *string

	// Итоговая сумма, зафиксированная при завершении
	TotalAmount *float64
}
