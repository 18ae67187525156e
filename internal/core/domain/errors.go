package domain

import "errors"

var (
	ErrEventNotFound        = errors.New("event not found")
	ErrReservationNotFound  = errors.New("reservation not found or already cancelled")
	ErrInsufficientCapacity = errors.New("not enough seats left")
	ErrConflict             = errors.New("reservation conflict")
	ErrDuplicateID          = errors.New("duplicate reservation id")
)
