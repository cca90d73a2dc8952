package validation

import (
	"errors"
	"fmt"

	"feedgen/internal/events"
	"feedgen/internal/logger"
)

// ErrInvalidEvent marks messages that can never be processed and should be skipped.
var ErrInvalidEvent = errors.New("invalid event")

type Validator struct {
	logger *logger.Logger
}

func New(logger *logger.Logger) *Validator {
	return &Validator{
		logger: logger,
	}
}

// ValidateEvent checks that a decoded message names a known event and the
// ids that event needs.
func (v *Validator) ValidateEvent(m events.Message) error {
	switch {
	case m.Type.IsProduct():
		if m.ProductID <= 0 {
			return fmt.Errorf("%w: %s without product_id", ErrInvalidEvent, m.Type)
		}
	case m.Type.IsComment():
		if m.CommentID <= 0 {
			return fmt.Errorf("%w: %s without comment_id", ErrInvalidEvent, m.Type)
		}
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidEvent, m.Type)
	}

	v.logger.Debug("Validated event %s (%s)", m.ID, m.Type)
	return nil
}
