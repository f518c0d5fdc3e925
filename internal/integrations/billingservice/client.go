package billingservice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/salonmate/SM-AppointmentService/internal/domain"
)

var (
	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("billingservice client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("billingservice client: invalid response")
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client клиент для работы с BillingService
// Вызывается при завершении записи для фиксации суммы и расчёта комиссии;
// результат расчёта для ядра непрозрачен
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента BillingService
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// finalizeRequest запрос на фиксацию завершённой записи
type finalizeRequest struct {
	AppointmentID int64               `json:"appointment_id"`
	BusinessID    int64               `json:"business_id"`
	BranchID      int64               `json:"branch_id"`
	SpecialistID  int64               `json:"specialist_id"`
	TotalAmount   float64             `json:"total_amount"`
	Services      []finalizedService  `json:"services"`
	CompletedAt   time.Time           `json:"completed_at"`
}

type finalizedService struct {
	ServiceID int64   `json:"service_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
}

// FinalizeCommission передает завершённую запись в BillingService
// для фиксации суммы и расчёта комиссии специалиста
func (c *Client) FinalizeCommission(ctx context.Context, appointment *domain.Appointment) error {
	services := make([]finalizedService, len(appointment.Services))
	for i, s := range appointment.Services {
		services[i] = finalizedService{
			ServiceID: s.ServiceID,
			Name:      s.Name,
			Price:     s.Price,
		}
	}

	payload := finalizeRequest{
		AppointmentID: appointment.ID,
		BusinessID:    appointment.BusinessID,
		BranchID:      appointment.BranchID,
		SpecialistID:  appointment.SpecialistID,
		TotalAmount:   appointment.TotalAmount,
		Services:      services,
		CompletedAt:   time.Now().UTC(),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal request: %v", ErrInternal, err)
	}

	url := fmt.Sprintf("%s/internal/commissions/finalize", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(respBody))
	}

	return nil
}
