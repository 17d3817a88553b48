package statemachine

import (
	"campus-canteen-api/models"
)

// Transition describes a step in the conventional order flow
type Transition struct {
	From  models.OrderStatus `json:"from"`
	To    models.OrderStatus `json:"to"`
	Actor models.Role        `json:"actor"`
}

// statuses is the closed set an order can hold
var statuses = []models.OrderStatus{
	models.StatusPending,
	models.StatusReady,
	models.StatusDelivered,
}

// conventionalFlow is how the counter normally moves an order. It is descriptive only:
// staff may write any status over any other.
var conventionalFlow = []Transition{
	{From: models.StatusPending, To: models.StatusReady, Actor: models.RoleStaff},
	{From: models.StatusReady, To: models.StatusDelivered, Actor: models.RoleStaff},
}

// InitialStatus is Ready for orders paid up front, Pending otherwise
func InitialStatus(paid bool) models.OrderStatus {
	if paid {
		return models.StatusReady
	}
	return models.StatusPending
}

// ParseStatus maps a wire value onto a known status
func ParseStatus(s string) (models.OrderStatus, bool) {
	for _, st := range statuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// CanTransition reports whether from -> to is accepted. Any known status may follow any
// other, including moving back out of Delivered.
// TODO: enforce conventionalFlow once the counter staff confirm rollbacks are never needed.
func CanTransition(from, to models.OrderStatus) bool {
	_, okFrom := ParseStatus(string(from))
	_, okTo := ParseStatus(string(to))
	return okFrom && okTo
}

// IsConventional reports whether from -> to follows the normal counter flow
func IsConventional(from, to models.OrderStatus) bool {
	for _, t := range conventionalFlow {
		if t.From == from && t.To == to {
			return true
		}
	}
	return false
}

// Statuses returns the full status set
func Statuses() []models.OrderStatus {
	return append([]models.OrderStatus(nil), statuses...)
}

// GetAllTransitions returns the conventional flow for documentation
func GetAllTransitions() []Transition {
	return append([]Transition(nil), conventionalFlow...)
}

// TerminalStatus is the conventional end of the flow; it is not enforced
func TerminalStatus() models.OrderStatus {
	return models.StatusDelivered
}
