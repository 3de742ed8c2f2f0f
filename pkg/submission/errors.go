package submission

import (
	"fmt"
	"strings"
)

// ValidationError reports a rejected field value.
type ValidationError struct {
	Field   string
	Option  string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Errors collects every rejected field of one submission.
type Errors []ValidationError

func (e Errors) Error() string {
	if len(e) == 0 {
		return "submission: no errors"
	}
	parts := make([]string, 0, len(e))
	for _, err := range e {
		parts = append(parts, err.Error())
	}
	return "submission: invalid fields: " + strings.Join(parts, "; ")
}

// Messages groups messages by field id, the shape render.FieldNotices takes.
func (e Errors) Messages() map[string][]string {
	if len(e) == 0 {
		return nil
	}
	out := make(map[string][]string, len(e))
	for _, err := range e {
		out[err.Field] = append(out[err.Field], err.Message)
	}
	return out
}
