package core

import (
	"errors"
	"strings"
	"time"
)

const (
	FloorNone     Floor = ""
	FloorBasement Floor = "Basement"
	FloorGround   Floor = "Ground Floor"
	FloorFirst    Floor = "1st Floor"
	FloorSecond   Floor = "2nd Floor"
)

const (
	PayCash         PaymentMethod = "Cash"
	PayCard         PaymentMethod = "Card"
	PayUPI          PaymentMethod = "UPI"
	PayBankTransfer PaymentMethod = "Bank Transfer"
)

// DateLayout is the wire format for expense dates (ISO 8601 calendar date).
const DateLayout = "2006-01-02"

type (
	Floor         string
	PaymentMethod string

	Money struct {
		Cents int64
	}

	// Expense is a single construction-expense record. The backend assigns
	// ID on creation; the client never invents one.
	Expense struct {
		ID            int64
		Date          string // YYYY-MM-DD
		Name          string
		Category      string
		Floor         Floor
		Amount        Money
		PaymentMethod PaymentMethod
		Notes         string
		ProofURL      string
	}

	// Stats is the backend-computed aggregate over the full dataset.
	Stats struct {
		TotalExpenses Money
		TotalEntries  int
		DateRange     string
		AvgExpense    Money
	}
)

var (
	ErrInvalidDate          = errors.New("invalid date")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrEmptyName            = errors.New("empty name")
	ErrEmptyCategory        = errors.New("empty category")
	ErrInvalidFloor         = errors.New("invalid floor")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
)

// ParseDate validates an ISO calendar date string.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

func (f Floor) Validate() error {
	switch f {
	case FloorNone, FloorBasement, FloorGround, FloorFirst, FloorSecond:
		return nil
	}
	return ErrInvalidFloor
}

func (p PaymentMethod) Validate() error {
	switch p {
	case PayCash, PayCard, PayUPI, PayBankTransfer:
		return nil
	}
	return ErrInvalidPaymentMethod
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (e Expense) Validate() error {
	if _, err := ParseDate(e.Date); err != nil {
		return err
	}
	if len(strings.TrimSpace(e.Name)) == 0 {
		return ErrEmptyName
	}
	if len(e.Name) > 200 {
		return errors.New("name too long (max 200 characters)")
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	if err := e.Floor.Validate(); err != nil {
		return err
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if err := e.PaymentMethod.Validate(); err != nil {
		return err
	}
	return nil
}
