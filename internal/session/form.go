package session

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jonboulle/clockwork"

	"github.com/locvowork/employee_management_sample/console/internal/domain"
)

// DefaultPerformanceScore fills an absent score when building a payload.
const DefaultPerformanceScore = 50

// FormValues holds the raw field values of the edit form.
type FormValues struct {
	Name             string     `json:"name" validate:"required,min=2"`
	Department       string     `json:"department" validate:"required,oneof=Engineering HR Finance"`
	Role             string     `json:"role" validate:"required,min=2"`
	JoiningDate      *time.Time `json:"joiningDate" validate:"required,notfuture"`
	Status           string     `json:"status" validate:"required,oneof='Active' 'On Leave' 'Resigned'"`
	PerformanceScore *int       `json:"performanceScore" validate:"required,min=1,max=100"`
}

// FromEmployee pre-fills a form from a record. An unparseable joining date
// leaves the date empty.
func FromEmployee(e domain.Employee) FormValues {
	f := FormValues{
		Name:       e.Name,
		Department: string(e.Department),
		Role:       e.Role,
		Status:     string(e.Status),
	}
	if t, err := domain.ParseDate(e.JoiningDate); err == nil {
		f.JoiningDate = &t
	}
	score := e.PerformanceScore
	f.PerformanceScore = &score
	return f
}

// ToEmployee builds the gateway payload. The id is left unset.
func (f FormValues) ToEmployee() domain.Employee {
	e := domain.Employee{
		Name:             f.Name,
		Department:       domain.Department(f.Department),
		Role:             f.Role,
		Status:           domain.Status(f.Status),
		PerformanceScore: DefaultPerformanceScore,
	}
	if f.JoiningDate != nil && !f.JoiningDate.IsZero() {
		e.JoiningDate = domain.FormatDate(*f.JoiningDate)
	}
	if f.PerformanceScore != nil {
		e.PerformanceScore = *f.PerformanceScore
	}
	return e
}

func (f FormValues) clone() FormValues {
	if f.JoiningDate != nil {
		t := *f.JoiningDate
		f.JoiningDate = &t
	}
	if f.PerformanceScore != nil {
		s := *f.PerformanceScore
		f.PerformanceScore = &s
	}
	return f
}

// fieldMessages maps json field name and failed rule to the message shown
// next to the field. The "" rule is the fallback for a field.
var fieldMessages = map[string]map[string]string{
	"name": {
		"required": "Please enter employee name",
		"":         "Name must be at least 2 characters",
	},
	"department": {
		"": "Please select department",
	},
	"role": {
		"required": "Please enter employee role",
		"":         "Role must be at least 2 characters",
	},
	"joiningDate": {
		"required":  "Please select joining date",
		"notfuture": "Joining date cannot be in the future",
	},
	"status": {
		"": "Please select status",
	},
	"performanceScore": {
		"required": "Please enter performance score",
		"":         "Score must be between 1 and 100",
	},
}

func messageFor(field, tag string) string {
	msgs := fieldMessages[field]
	if m, ok := msgs[tag]; ok {
		return m
	}
	if m, ok := msgs[""]; ok {
		return m
	}
	return "Invalid value"
}

// FormValidator validates FormValues. Today is taken from the clock so that
// the future-date rule is deterministic under test.
type FormValidator struct {
	validate *validator.Validate
	clock    clockwork.Clock
}

func NewFormValidator(clock clockwork.Clock) *FormValidator {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	fv := &FormValidator{validate: validator.New(), clock: clock}

	fv.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// RegisterValidation only fails on an empty tag or a nil func.
	_ = fv.validate.RegisterValidation("notfuture", fv.notFuture)
	return fv
}

// notFuture accepts any calendar date up to and including today.
func (fv *FormValidator) notFuture(fl validator.FieldLevel) bool {
	t, ok := fl.Field().Interface().(time.Time)
	if !ok {
		return false
	}
	return domain.FormatDate(t) <= domain.FormatDate(fv.clock.Now())
}

// Validate returns nil or a *domain.ValidationError with one message per
// failing field.
func (fv *FormValidator) Validate(f FormValues) error {
	err := fv.validate.Struct(f)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := fields[fe.Field()]; seen {
			continue
		}
		fields[fe.Field()] = messageFor(fe.Field(), fe.Tag())
	}
	return &domain.ValidationError{Fields: fields}
}
