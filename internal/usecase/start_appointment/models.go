package start_appointment

import "github.com/salonmate/SM-AppointmentService/internal/workflow"

// Action действие процедуры начала записи
type Action string

const (
	// ActionBegin возвращает первый шаг процедуры без побочных эффектов
	ActionBegin Action = "begin"

	// ActionSignConsent отправляет подпись в consent-сервис и фиксирует гейт
	ActionSignConsent Action = "sign-consent"

	// ActionAttachBeforeEvidence регистрирует загрузку фото "до"
	ActionAttachBeforeEvidence Action = "attach-before-evidence"

	// ActionSkipBeforeEvidence пропускает шаг фотофиксации
	ActionSkipBeforeEvidence Action = "skip-before-evidence"

	// ActionConfirmStart переводит запись в in_progress
	ActionConfirmStart Action = "confirm-start"
)

// ParseAction парсит действие из строки
func ParseAction(s string) (Action, bool) {
	switch Action(s) {
	case ActionBegin, ActionSignConsent, ActionAttachBeforeEvidence,
		ActionSkipBeforeEvidence, ActionConfirmStart:
		return Action(s), true
	default:
		return "", false
	}
}

// Request модель запроса действия процедуры начала
type Request struct {
	AppointmentID int64
	UserID        int64
	Action        Action

	// Подпись клиента для действия sign-consent
	Signature []byte
}

// Response модель ответа с текущим состоянием процедуры
type Response struct {
	AppointmentID int64
	Status        string

	// Следующий шаг процедуры; DONE после confirm-start
	NextStep workflow.Step

	// Токен загрузки фото для attach-before-evidence
	UploadToken *string
}
