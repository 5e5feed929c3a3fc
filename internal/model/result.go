package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidCategory = errors.New("model: invalid test category")
	ErrInvalidEye      = errors.New("model: invalid eye")
)

type TestCategory string

const (
	CategoryScore     TestCategory = "score"
	CategorySelf      TestCategory = "self"
	CategoryAccessory TestCategory = "accessory"
)

func (c TestCategory) IsValid() bool {
	switch c {
	case CategoryScore, CategorySelf, CategoryAccessory:
		return true
	default:
		return false
	}
}

type Eye string

const (
	EyeRight Eye = "OD"
	EyeLeft  Eye = "OS"
	EyeBoth  Eye = "OU"
)

func (e Eye) IsValid() bool {
	switch e {
	case EyeRight, EyeLeft, EyeBoth:
		return true
	default:
		return false
	}
}

// TestResult is one self-administered screening outcome.
type TestResult struct {
	ID         string
	TestID     string
	Label      string
	Category   TestCategory
	Eye        Eye
	Value      string
	Unit       string
	Notes      string
	DistanceCM *float64
	RecordedAt time.Time
}

func (r TestResult) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return errors.New("model: result id is required")
	}
	if strings.TrimSpace(r.TestID) == "" {
		return errors.New("model: result test id is required")
	}
	if !r.Category.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, r.Category)
	}
	if !r.Eye.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidEye, r.Eye)
	}
	if strings.TrimSpace(r.Value) == "" {
		return errors.New("model: result value is required")
	}
	if r.RecordedAt.IsZero() {
		return errors.New("model: result recorded_at is required")
	}
	if r.DistanceCM != nil && *r.DistanceCM <= 0 {
		return errors.New("model: result distance must be positive")
	}
	return nil
}
