package model

import "time"

// Field identifies one named input in the feedback form.
type Field string

const (
	FieldName    Field = "name"
	FieldEmail   Field = "email"
	FieldSubject Field = "subject"
	FieldMessage Field = "message"
	FieldRating  Field = "rating"
)

// ValidatedFields lists the fields that carry validation rules, in the order
// they are checked on submit.
var ValidatedFields = []Field{FieldName, FieldEmail, FieldMessage}

// AllFields lists every field collected into a Submission.
var AllFields = []Field{FieldName, FieldEmail, FieldSubject, FieldMessage, FieldRating}

// String implements fmt.Stringer.
func (f Field) String() string {
	return string(f)
}

// ErrorSlotID reports the id of the element that displays the field's
// validation message ("nameError", "emailError", ...).
func (f Field) ErrorSlotID() string {
	return string(f) + "Error"
}

// Validated reports whether the field has a validation rule.
func (f Field) Validated() bool {
	for _, name := range ValidatedFields {
		if name == f {
			return true
		}
	}
	return false
}

// RatingNotRated is collected when no rating option is checked.
const RatingNotRated = "Not rated"

// ValidationResult is the outcome of a single field rule. Message is empty
// when Valid is true.
type ValidationResult struct {
	Field   Field  `json:"field"`
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

// Pass builds a successful result for field.
func Pass(field Field) ValidationResult {
	return ValidationResult{Field: field, Valid: true}
}

// Fail builds a failed result carrying a human readable message.
func Fail(field Field, message string) ValidationResult {
	return ValidationResult{Field: field, Message: message}
}

// SubmissionState tracks the simulated submission lifecycle of one form.
type SubmissionState int

const (
	StateIdle SubmissionState = iota
	StatePending
	StateCompleted
)

func (s SubmissionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePending:
		return "pending"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Submission is the payload collected from the form when every validated
// field passes.
type Submission struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Subject     string    `json:"subject"`
	Message     string    `json:"message"`
	Rating      string    `json:"rating"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// Values flattens the submission into a field keyed map.
func (s Submission) Values() map[string]any {
	return map[string]any{
		"id":          s.ID,
		"name":        s.Name,
		"email":       s.Email,
		"subject":     s.Subject,
		"message":     s.Message,
		"rating":      s.Rating,
		"submittedAt": s.SubmittedAt.Format(time.RFC3339),
	}
}
