package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type ConversationState string

const (
	ConversationIdle             ConversationState = ""
	ConversationAwaitingPhoto    ConversationState = "awaiting_photo"
	ConversationAwaitingAmount   ConversationState = "awaiting_amount"
	ConversationAwaitingCategory ConversationState = "awaiting_category"
)

// Scratch keys.
const (
	ScratchPhotoRef = "photoRef"
	ScratchAmount   = "amount"
	ScratchCategory = "category"
)

var (
	ErrIncompleteScratch = errors.New("conversation: scratch data is missing a previous step")
	ErrUnknownState      = errors.New("conversation: unknown state")
)

// Scratch is the persisted JSON payload accumulated across turns.
type Scratch map[string]any

// Step is the typed view of a (state, scratch) pair. Each state only exposes the fields
// its predecessors are required to have filled in.
type Step interface {
	State() ConversationState
}

type IdleStep struct{}

type AwaitingPhotoStep struct{}

type AwaitingAmountStep struct {
	PhotoRef string
}

type AwaitingCategoryStep struct {
	PhotoRef string
	Amount   decimal.Decimal
}

func (IdleStep) State() ConversationState             { return ConversationIdle }
func (AwaitingPhotoStep) State() ConversationState    { return ConversationAwaitingPhoto }
func (AwaitingAmountStep) State() ConversationState   { return ConversationAwaitingAmount }
func (AwaitingCategoryStep) State() ConversationState { return ConversationAwaitingCategory }

// DecodeStep builds the typed step for a persisted state and its scratch payload.
func DecodeStep(state ConversationState, scratch Scratch) (Step, error) {
	switch state {
	case ConversationIdle:
		return IdleStep{}, nil
	case ConversationAwaitingPhoto:
		return AwaitingPhotoStep{}, nil
	case ConversationAwaitingAmount:
		photo, err := scratch.photoRef()
		if err != nil {
			return nil, err
		}
		return AwaitingAmountStep{PhotoRef: photo}, nil
	case ConversationAwaitingCategory:
		photo, err := scratch.photoRef()
		if err != nil {
			return nil, err
		}
		amount, err := scratch.Amount()
		if err != nil {
			return nil, err
		}
		return AwaitingCategoryStep{PhotoRef: photo, Amount: amount}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownState, state)
	}
}

func (s Scratch) photoRef() (string, error) {
	ref, _ := s[ScratchPhotoRef].(string)
	if strings.TrimSpace(ref) == "" {
		return "", fmt.Errorf("%w: %s", ErrIncompleteScratch, ScratchPhotoRef)
	}
	return ref, nil
}

// Amount reads the amount key, accepting the number or string forms JSON may hold.
func (s Scratch) Amount() (decimal.Decimal, error) {
	var (
		amount decimal.Decimal
		err    error
	)
	switch v := s[ScratchAmount].(type) {
	case string:
		amount, err = decimal.NewFromString(v)
	case float64:
		amount = decimal.NewFromFloat(v)
	case int:
		amount = decimal.NewFromInt(int64(v))
	case int64:
		amount = decimal.NewFromInt(v)
	case json.Number:
		amount, err = decimal.NewFromString(v.String())
	case decimal.Decimal:
		amount = v
	default:
		return decimal.Zero, fmt.Errorf("%w: %s", ErrIncompleteScratch, ScratchAmount)
	}
	if err != nil || !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrIncompleteScratch, ScratchAmount)
	}
	return amount, nil
}

// Merge returns a copy of s with partial's keys written over it.
func (s Scratch) Merge(partial Scratch) Scratch {
	out := make(Scratch, len(s)+len(partial))
	for k, v := range s {
		out[k] = v
	}
	for k, v := range partial {
		out[k] = v
	}
	return out
}
