// internal/errors/errors.go
package appErrors

import "fmt"

// ErrCampaignNotFound is a sentinel error
type ErrCampaignNotFound struct {
	CampaignID string
}

func (e *ErrCampaignNotFound) Error() string {
	return fmt.Sprintf("campaign %s not found", e.CampaignID)
}

// Helper constructor
func NewCampaignNotFound(id string) error {
	return &ErrCampaignNotFound{CampaignID: id}
}

type ErrDeliveryNotFound struct {
	DeliveryID string
}

func (e *ErrDeliveryNotFound) Error() string {
	return fmt.Sprintf("delivery %s not found", e.DeliveryID)
}

func NewDeliveryNotFound(id string) error {
	return &ErrDeliveryNotFound{DeliveryID: id}
}

// ErrDeliveryNotPending rejects an outcome report for a delivery that has
// already reached a terminal status. A duplicate report never flips it back.
type ErrDeliveryNotPending struct {
	DeliveryID string
	Status     string
}

func (e *ErrDeliveryNotPending) Error() string {
	return fmt.Sprintf("delivery %s is %s, not pending", e.DeliveryID, e.Status)
}

func NewDeliveryNotPending(id, status string) error {
	return &ErrDeliveryNotPending{DeliveryID: id, Status: status}
}

type ErrProfileNotFound struct {
	ProfileID string
}

func (e *ErrProfileNotFound) Error() string {
	return fmt.Sprintf("profile %s not found", e.ProfileID)
}

func NewProfileNotFound(id string) error {
	return &ErrProfileNotFound{ProfileID: id}
}

type ErrDuplicateProfile struct {
	Email string
}

func (e *ErrDuplicateProfile) Error() string {
	return fmt.Sprintf("profile with email %s already exists", e.Email)
}

func NewDuplicateProfile(email string) error {
	return &ErrDuplicateProfile{Email: email}
}

type ErrTemplateNotFound struct {
	TemplateID string
}

func (e *ErrTemplateNotFound) Error() string {
	return fmt.Sprintf("template %s not found", e.TemplateID)
}

func NewTemplateNotFound(id string) error {
	return &ErrTemplateNotFound{TemplateID: id}
}
