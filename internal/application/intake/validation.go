package intake

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pumpkinbots/partbot/internal/application/dto"
	"github.com/pumpkinbots/partbot/internal/domain/entity"
)

// Límites de validación del intake.
const (
	MinQuantity   = 1
	MaxQuantity   = 1000
	MaxNoteLength = 500
	MaxURLLength  = 2048
	MaxOpenOrders = 15
	MaxDenied     = 15
)

var (
	minBudget = decimal.Zero
	maxBudget = decimal.NewFromInt(10000)
)

// newRequest valida la entrada de creación y construye el Request inicial.
func newRequest(in dto.IntakeRequest, now time.Time) (*entity.Request, error) {
	subsystem := strings.TrimSpace(in.Subsystem)
	if subsystem == "" {
		return nil, &dto.EnvelopeError{
			Code:    dto.CodeMissingParameter,
			Message: "Required fields are missing",
			Details: map[string]any{"missingFields": []string{"subsystem"}},
		}
	}
	if !contains(entity.Subsystems, subsystem) {
		return nil, invalid("subsystem", subsystem, "Invalid subsystem value", entity.Subsystems)
	}

	// Ausente o 0 vale 1; un negativo sí es error.
	qty := 1
	if in.Quantity != nil && *in.Quantity != 0 {
		qty = *in.Quantity
	}
	if qty < MinQuantity {
		return nil, validation("quantity", qty, fmt.Sprintf("Quantity must be at least %d", MinQuantity))
	}
	if qty > MaxQuantity {
		return nil, validation("quantity", qty, fmt.Sprintf("Quantity cannot exceed %d", MaxQuantity))
	}

	if in.MaxBudget != nil {
		if in.MaxBudget.LessThan(minBudget) {
			return nil, validation("maxBudget", in.MaxBudget.String(), "Budget cannot be negative")
		}
		if in.MaxBudget.GreaterThan(maxBudget) {
			return nil, validation("maxBudget", in.MaxBudget.String(), "Budget cannot exceed $"+maxBudget.String())
		}
	}

	priority := strings.TrimSpace(in.Priority)
	if priority == "" {
		priority = entity.PriorityMedium
	}
	if !contains(entity.Priorities, priority) {
		return nil, invalid("priority", priority, "Invalid priority value", entity.Priorities)
	}

	notes := strings.TrimSpace(in.Notes)
	if len([]rune(notes)) > MaxNoteLength {
		return nil, validation("notes", len([]rune(notes)), fmt.Sprintf("Notes cannot exceed %d characters", MaxNoteLength))
	}
	link := strings.TrimSpace(in.PartLink)
	if len(link) > MaxURLLength {
		return nil, validation("partLink", len(link), fmt.Sprintf("URL cannot exceed %d characters", MaxURLLength))
	}

	var neededBy *time.Time
	if s := strings.TrimSpace(in.NeededBy); s != "" {
		t, err := parseDate(s)
		if err != nil {
			return nil, invalid("neededBy", s, "neededBy must be an ISO-8601 date", nil)
		}
		neededBy = &t
	}

	requester := strings.TrimSpace(in.Requester)
	if requester == "" {
		requester = "Discord User"
	}

	req := &entity.Request{
		ID:                entity.NewRequestID(),
		CreatedAt:         now.UTC(),
		Requester:         requester,
		Subsystem:         subsystem,
		PartName:          strings.TrimSpace(in.PartName),
		PartLink:          link,
		Quantity:          qty,
		Priority:          priority,
		NeededBy:          neededBy,
		MaxBudget:         in.MaxBudget,
		Status:            entity.StatusSubmitted,
		ExpeditedShipping: in.ExpeditedShipping,
	}
	if notes != "" {
		req.AppendNote(now, "requester: "+notes)
	}
	return req, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("fecha inválida %q", s)
}

func validation(field string, value any, msg string) *dto.EnvelopeError {
	return &dto.EnvelopeError{
		Code:    dto.CodeValidation,
		Message: msg,
		Details: map[string]any{"field": field, "value": value},
	}
}

func invalid(field string, value any, msg string, valid []string) *dto.EnvelopeError {
	details := map[string]any{"field": field, "value": value}
	if valid != nil {
		details["validValues"] = valid
	}
	return &dto.EnvelopeError{Code: dto.CodeInvalidParameter, Message: msg, Details: details}
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
