package handlers

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"

	appValidator "github.com/durga1023/ContactUsRepository/pkg/validator"
)

// phonePattern accepts common national and international notations, e.g.
// "+1 415 555 0100" or "415-555-0100".
var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9\-\s().]{5,19}$`)

func init() {
	// Registration only fails for an empty tag or nil func.
	_ = appValidator.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
}

// fieldLabels maps submitted field names to the labels used in messages.
var fieldLabels = map[string]string{
	"firstName": "First name",
	"lastName":  "Last name",
	"email":     "Email",
	"phone":     "Phone",
	"zip":       "Zip code",
	"city":      "City",
	"state":     "State",
	"comments":  "Comments",
}

// validateForm runs struct validation and flattens failures into a map of
// field name to human-readable message. An empty map means the form passed.
func validateForm(form *SubmissionForm) map[string]string {
	err := appValidator.ValidateStruct(form)
	if err == nil {
		return nil
	}

	failures, ok := err.(appValidator.ValidationErrors)
	if !ok {
		return map[string]string{"form": "Invalid form submission."}
	}

	fields := make(map[string]string, len(failures))
	for _, failure := range failures {
		// keep the first failure per field
		if _, seen := fields[failure.Field]; seen {
			continue
		}
		fields[failure.Field] = fieldMessage(failure)
	}
	return fields
}

func fieldMessage(failure appValidator.ValidationError) string {
	label, ok := fieldLabels[failure.Field]
	if !ok {
		label = failure.Field
	}

	switch failure.Tag {
	case "required":
		return fmt.Sprintf("%s is required.", label)
	case "max":
		return fmt.Sprintf("%s cannot exceed %s characters.", label, failure.Param)
	case "email":
		return "Invalid email address."
	case "phone":
		return "Invalid phone number."
	default:
		return fmt.Sprintf("%s is invalid.", label)
	}
}
