package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	Income  TransactionType = "Income"
	Expense TransactionType = "Expense"
)

const (
	Weekly    BudgetPeriod = "Weekly"
	Monthly   BudgetPeriod = "Monthly"
	Quarterly BudgetPeriod = "Quarterly"
	Yearly    BudgetPeriod = "Yearly"
)

const (
	MaxCategoryNameLength = 100
	MaxDescriptionLength  = 255
)

type (
	TransactionType string

	BudgetPeriod string

	// Date is a calendar day. The time component is always midnight UTC.
	Date struct {
		time.Time
	}

	User struct {
		ID        int64
		Username  string
		FirstName string
		LastName  string
		Email     string
		CreatedAt time.Time
	}

	Category struct {
		ID          int64
		UserID      int64
		Name        string
		Description string
		CreatedAt   time.Time
	}

	Transaction struct {
		ID           int64
		UserID       int64
		Type         TransactionType
		Amount       Money
		Date         Date
		CategoryID   int64
		CategoryName string
		Description  string
		CreatedAt    time.Time
		UpdatedAt    time.Time
	}

	Budget struct {
		ID           int64
		UserID       int64
		CategoryID   int64
		CategoryName string
		Limit        Money
		Period       BudgetPeriod
		CreatedAt    time.Time
		UpdatedAt    time.Time
	}
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidType        = errors.New("invalid transaction type")
	ErrInvalidPeriod      = errors.New("invalid budget period")
	ErrInvalidDate        = errors.New("invalid date")
	ErrEmptyName          = errors.New("empty name")
	ErrNameTooLong        = errors.New("name too long")
	ErrDescriptionTooLong = errors.New("description too long")
	ErrMissingCategory    = errors.New("missing category")
	ErrDuplicate          = errors.New("duplicate")
)

// ValidationError reports a rejected field with the message shown to the user.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrValidation}
	}
	return []error{ErrValidation, e.Err}
}

func invalid(field, message string, err error) error {
	return &ValidationError{Field: field, Message: message, Err: err}
}

// NewDate creates a new Date from year, month, day
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return Date{}, invalid("date", "Enter a valid date.", ErrInvalidDate)
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(time.DateOnly)
}

// InMonth reports whether d falls within the given calendar month.
func (d Date) InMonth(year int, month time.Month) bool {
	return d.Year() == year && d.Month() == month
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalJSON overrides the promoted time.Time encoding so dates stay YYYY-MM-DD.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// ParseTransactionType accepts the canonical names case-insensitively.
func ParseTransactionType(s string) (TransactionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income":
		return Income, nil
	case "expense":
		return Expense, nil
	}
	return "", invalid("type", fmt.Sprintf("Select a valid choice. %s is not one of the available choices.", s), ErrInvalidType)
}

func (p BudgetPeriod) Valid() bool {
	switch p {
	case Weekly, Monthly, Quarterly, Yearly:
		return true
	}
	return false
}

// ParseBudgetPeriod defaults to Monthly on empty input.
func ParseBudgetPeriod(s string) (BudgetPeriod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "monthly":
		return Monthly, nil
	case "weekly":
		return Weekly, nil
	case "quarterly":
		return Quarterly, nil
	case "yearly":
		return Yearly, nil
	}
	return "", invalid("period", fmt.Sprintf("Select a valid choice. %s is not one of the available choices.", s), ErrInvalidPeriod)
}

func (c Category) Validate() error {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return invalid("name", "This field is required.", ErrEmptyName)
	}
	if utf8.RuneCountInString(name) > MaxCategoryNameLength {
		return invalid("name", fmt.Sprintf("Ensure this value has at most %d characters.", MaxCategoryNameLength), ErrNameTooLong)
	}
	return nil
}

func (t Transaction) Validate() error {
	if !t.Type.Valid() {
		return invalid("type", "Select a valid choice.", ErrInvalidType)
	}
	if err := t.Amount.Validate(); err != nil {
		return invalid("amount", "Ensure this value is greater than or equal to 0.01.", err)
	}
	if t.Date.IsZero() {
		return invalid("date", "This field is required.", ErrInvalidDate)
	}
	if t.CategoryID <= 0 {
		return invalid("category", "This field is required.", ErrMissingCategory)
	}
	if utf8.RuneCountInString(t.Description) > MaxDescriptionLength {
		return invalid("description", fmt.Sprintf("Ensure this value has at most %d characters.", MaxDescriptionLength), ErrDescriptionTooLong)
	}
	return nil
}

func (b Budget) Validate() error {
	if b.CategoryID <= 0 {
		return invalid("category", "This field is required.", ErrMissingCategory)
	}
	if err := b.Limit.Validate(); err != nil {
		return invalid("limit", "Ensure this value is greater than or equal to 0.01.", err)
	}
	if !b.Period.Valid() {
		return invalid("period", "Select a valid choice.", ErrInvalidPeriod)
	}
	return nil
}

// DuplicateCategoryError is the message shown when a user reuses a category name.
func DuplicateCategoryError() error {
	return invalid("name", "You already have a category with this name.", ErrDuplicate)
}

// DuplicateBudgetError is the message shown when a (category, period) budget already exists.
func DuplicateBudgetError(period BudgetPeriod, categoryName string) error {
	return invalid("", fmt.Sprintf("You already have a %s budget for %s.", strings.ToLower(string(period)), categoryName), ErrDuplicate)
}
