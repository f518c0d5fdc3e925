package evidenceservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/salonmate/SM-AppointmentService/internal/domain"
)

var (
	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("evidenceservice client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("evidenceservice client: invalid response")

	// ErrUploadNotFound возвращается, когда загрузка с указанным токеном не найдена
	ErrUploadNotFound = errors.New("evidence upload not found")
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client клиент для работы с EvidenceService
// Транспорт и хранение фото - зона ответственности EvidenceService;
// ядро читает только булев гейт "фотофиксация есть/нет"
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента EvidenceService
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// evidenceStatusResponse ответ EvidenceService о наличии фотофиксации
type evidenceStatusResponse struct {
	AppointmentID int64  `json:"appointment_id"`
	Kind          string `json:"kind"`
	Present       bool   `json:"present"`
}

// uploadTicketResponse ответ EvidenceService на регистрацию загрузки
type uploadTicketResponse struct {
	UploadToken string `json:"upload_token"`
	UploadURL   string `json:"upload_url"`
}

// HasEvidence возвращает true, если по записи есть фотофиксация указанного вида
func (c *Client) HasEvidence(ctx context.Context, appointmentID int64, kind domain.EvidenceKind) (bool, error) {
	url := fmt.Sprintf("%s/internal/appointments/%d/evidence/%s", c.baseURL, appointmentID, kind)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// Продолжаем обработку
	case http.StatusNotFound:
		return false, nil
	default:
		body, _ := io.ReadAll(resp.Body)
		return false, fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	var status evidenceStatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return false, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	return status.Present, nil
}

// RegisterUpload регистрирует намерение загрузить фото и возвращает токен загрузки
// Токен генерируется на нашей стороне, чтобы загрузка была идемпотентной при ретраях
func (c *Client) RegisterUpload(ctx context.Context, appointmentID int64, kind domain.EvidenceKind) (string, error) {
	token := uuid.NewString()
	url := fmt.Sprintf("%s/internal/appointments/%d/evidence/%s/uploads/%s",
		c.baseURL, appointmentID, kind, token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	var ticket uploadTicketResponse
	if err := json.NewDecoder(resp.Body).Decode(&ticket); err != nil {
		return "", fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	if ticket.UploadToken == "" {
		ticket.UploadToken = token
	}

	return ticket.UploadToken, nil
}
