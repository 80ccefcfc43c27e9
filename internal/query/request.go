package query

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Mode selects how candidates are matched.
type Mode string

const (
	// ModeAuthor matches a case-insensitive substring of the authors field.
	ModeAuthor Mode = "author"
	// ModeGenre matches a category exactly.
	ModeGenre Mode = "genre"
)

// PageBucket is a coarse page-count range.
type PageBucket string

const (
	PagesUnder300 PageBucket = "<300"
	Pages300To499 PageBucket = "300-499"
	Pages500Plus  PageBucket = "500+"
)

// MaxLimit caps the number of results a request may ask for.
const MaxLimit = 1000

// Contains reports whether a page count falls in the bucket.
func (b PageBucket) Contains(pages int) bool {
	switch b {
	case PagesUnder300:
		return pages < 300
	case Pages300To499:
		return pages >= 300 && pages <= 499
	case Pages500Plus:
		return pages >= 500
	default:
		return false
	}
}

// Request holds the parameters of one recommendation query.
type Request struct {
	Mode       Mode       `json:"mode" validate:"required,oneof=author genre"`
	Value      string     `json:"value" validate:"max=500"`
	PageBucket PageBucket `json:"page_bucket" validate:"required,oneof=<300 300-499 500+"`
	Limit      int        `json:"limit" validate:"min=0,max=1000"`
}

// ParseRequest builds a request from raw user input and validates it.
// Mode is matched case-insensitively; value is kept as typed.
func ParseRequest(mode, value, pageBucket string, limit int) (Request, error) {
	req := Request{
		Mode:       Mode(strings.ToLower(strings.TrimSpace(mode))),
		Value:      value,
		PageBucket: PageBucket(strings.TrimSpace(pageBucket)),
		Limit:      limit,
	}
	if err := req.Validate(); err != nil {
		return Request{}, err
	}
	return req, nil
}

// Validate checks the request against its field constraints.
func (r Request) Validate() error {
	if err := getValidator().Struct(r); err != nil {
		return formatError(err)
	}
	return nil
}

// ValidationError lists the request fields that failed validation.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, f)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, f := range names {
		parts[i] = f + " " + e.Fields[f]
	}
	return "invalid request: " + strings.Join(parts, "; ")
}

// NewValidationError reports a single invalid field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Use JSON tag names in error messages
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

func formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	fields := make(map[string]string, len(validationErrs))
	for _, e := range validationErrs {
		fields[e.Field()] = friendlyMessage(e)
	}
	return &ValidationError{Fields: fields}
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(e.Param(), " ", ", ")
	case "min":
		return "must be at least " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("must not exceed %s characters", e.Param())
		}
		return "must be at most " + e.Param()
	default:
		return "is invalid"
	}
}
