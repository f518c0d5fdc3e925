package domain

import "time"

// SchedulingConfig represents the slot configuration for a business
// Supports hierarchical configuration:
// 1. Service at specific branch (business_id, branch_id, service_id)
// 2. Branch-wide (business_id, branch_id, NULL)
// 3. Business-wide (business_id, NULL, NULL)
type SchedulingConfig struct {
	ID                 int64
	BusinessID         int64
	BranchID           *int64 // NULL = config for all branches
	ServiceID          *int64 // NULL = config for all services
	SlotStepMinutes    int
	AdvanceBookingDays int // 0 = unlimited
	MinNoticeMinutes   int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// IsGlobalConfig returns true if this is a business-wide configuration
func (c *SchedulingConfig) IsGlobalConfig() bool {
	return c.BranchID == nil && c.ServiceID == nil
}

// IsBranchSpecific returns true if this configuration is for a specific branch
func (c *SchedulingConfig) IsBranchSpecific() bool {
	return c.BranchID != nil && c.ServiceID == nil
}

// IsServiceAtBranch returns true if this configuration is for a specific service at a specific branch
func (c *SchedulingConfig) IsServiceAtBranch() bool {
	return c.BranchID != nil && c.ServiceID != nil
}

// HasAdvanceBookingLimit returns true if there's a limit on how far in advance appointments can be made
func (c *SchedulingConfig) HasAdvanceBookingLimit() bool {
	return c.AdvanceBookingDays > 0
}
