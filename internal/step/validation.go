package step

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError is one rejected request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned for malformed requests. Callers map it to a client error.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "invalid request: " + strings.Join(parts, "; ")
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validateRequest(v *validator.Validate, req *Request) error {
	if req == nil {
		return &ValidationError{Fields: []FieldError{{Field: "request", Message: "is required"}}}
	}

	err := v.Struct(req)
	if err == nil {
		return checkSnapshot(req.State)
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &ValidationError{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   trimNamespace(fe.Namespace()),
			Message: describe(fe),
		})
	}
	return out
}

// trimNamespace drops the root struct name, "Request.interview_state.current_phase"
// becomes "interview_state.current_phase".
func trimNamespace(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "email":
		return "must be a valid email"
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}

// checkSnapshot enforces the rules tags cannot express: phase counters must travel with
// any session that has progress, and the history must be numbered 0..n-1.
func checkSnapshot(snap *Snapshot) error {
	var fields []FieldError

	if snap.PhaseCounter == nil && hasProgress(snap) {
		fields = append(fields, FieldError{
			Field:   "interview_state.phase_counter",
			Message: "is required once the interview has started",
		})
	}

	seen := make([]bool, len(snap.ConversationHistory))
	for _, m := range snap.ConversationHistory {
		if m.OrderIndex >= len(seen) || seen[m.OrderIndex] {
			fields = append(fields, FieldError{
				Field:   "interview_state.conversation_history",
				Message: fmt.Sprintf("order_index values must be 0..%d without gaps or duplicates", len(seen)-1),
			})
			break
		}
		seen[m.OrderIndex] = true
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func hasProgress(snap *Snapshot) bool {
	if snap.CurrentPhase != "" && snap.CurrentPhase != "knockout" {
		return true
	}
	return len(snap.CompletedPhases) > 0 ||
		len(snap.ConversationHistory) > 0 ||
		len(snap.KnockoutScores) > 0 ||
		len(snap.TechnicalScores) > 0 ||
		len(snap.SoftSkillsScores) > 0 ||
		snap.RejectionReason != nil
}
