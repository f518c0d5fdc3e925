package get_business_appointments

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/salonmate/SM-AppointmentService/internal/service/appointments/models"
	"github.com/salonmate/SM-AppointmentService/pkg/types"
)

// ParseQuery собирает запрос сервиса из query параметров
// Поддерживаются: branchId, specialistId, startDate, endDate, status, includeInactive
func ParseQuery(businessID, userID int64, query url.Values) (*models.GetBusinessAppointmentsRequest, error) {
	req := &models.GetBusinessAppointmentsRequest{
		BusinessID: businessID,
		UserID:     userID,
	}

	if branchIDStr := query.Get("branchId"); branchIDStr != "" {
		branchID, err := strconv.ParseInt(branchIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid branchId %q", branchIDStr)
		}
		req.BranchID = &branchID
	}

	if specialistIDStr := query.Get("specialistId"); specialistIDStr != "" {
		specialistID, err := strconv.ParseInt(specialistIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid specialistId %q", specialistIDStr)
		}
		req.SpecialistID = &specialistID
	}

	startDateStr := query.Get("startDate")
	endDateStr := query.Get("endDate")
	if (startDateStr == "") != (endDateStr == "") {
		return nil, fmt.Errorf("startDate and endDate must be passed together")
	}
	if startDateStr != "" {
		startDate, err := types.NewDateStringFromString(startDateStr)
		if err != nil {
			return nil, fmt.Errorf("invalid startDate %q", startDateStr)
		}
		endDate, err := types.NewDateStringFromString(endDateStr)
		if err != nil {
			return nil, fmt.Errorf("invalid endDate %q", endDateStr)
		}
		req.StartDate = &startDate
		req.EndDate = &endDate
	}

	if statusStr := query.Get("status"); statusStr != "" {
		req.Status = &statusStr
	}

	if includeInactiveStr := query.Get("includeInactive"); includeInactiveStr != "" {
		includeInactive, err := strconv.ParseBool(includeInactiveStr)
		if err != nil {
			return nil, fmt.Errorf("invalid includeInactive %q", includeInactiveStr)
		}
		req.IncludeInactive = includeInactive
	}

	return req, nil
}
