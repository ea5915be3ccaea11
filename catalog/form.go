package catalog

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Rule is one declarative validation constraint on a form field. Tag is a
// validator/v10 tag expression ("required", "email", "min=8", "eq=true").
// Cross-field rules name the other field in Other ("eqfield"). Message
// overrides the generic per-tag message.
type Rule struct {
	Tag     string
	Other   string
	Message string
}

// Field declares a named form field and its rules, checked in order; the
// first failing rule supplies the field's error message.
type Field struct {
	Name  string
	Rules []Rule
}

// Form tracks current field values, runs per-field rules on every change
// (validate-on-change), and exposes a field-to-message error map plus an
// overall validity flag. Values are plain strings; checkboxes are stored as
// "true"/"false".
type Form struct {
	fields []Field
	values map[string]string
	errs   map[string]string
}

// NewForm creates a form with every declared field blank.
func NewForm(fields ...Field) *Form {
	f := &Form{
		fields: fields,
		values: make(map[string]string, len(fields)),
		errs:   make(map[string]string),
	}
	for _, fld := range fields {
		f.values[fld.Name] = ""
	}
	return f
}

// Set stores a field value and revalidates that field, plus any field whose
// rules reference it (changing the password re-checks its confirmation).
func (f *Form) Set(name, value string) {
	f.values[name] = value
	f.revalidate(name)
	for _, fld := range f.fields {
		for _, rule := range fld.Rules {
			if rule.Other == name {
				f.revalidate(fld.Name)
			}
		}
	}
}

// Value returns the current value of a field.
func (f *Form) Value(name string) string { return f.values[name] }

// Values returns a copy of all current field values.
func (f *Form) Values() map[string]string {
	out := make(map[string]string, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out
}

// Error returns the current error message for a field, if any.
func (f *Form) Error(name string) (string, bool) {
	msg, ok := f.errs[name]
	return msg, ok
}

// Errors returns a copy of the field-to-message error map.
func (f *Form) Errors() map[string]string {
	out := make(map[string]string, len(f.errs))
	for k, v := range f.errs {
		out[k] = v
	}
	return out
}

// Valid reports whether every field with declared rules currently passes.
// It does not touch the visible error map.
func (f *Form) Valid() bool {
	for _, fld := range f.fields {
		if f.check(fld) != "" {
			return false
		}
	}
	return true
}

// Reset replaces all field values and clears any errors. Used both to blank
// the form after a successful add and to seed an edit draft from an existing
// record; missing names reset to empty.
func (f *Form) Reset(values map[string]string) {
	for _, fld := range f.fields {
		f.values[fld.Name] = values[fld.Name]
	}
	f.errs = make(map[string]string)
}

// Submit validates every field. When all pass, the current values are handed
// verbatim to fn; otherwise a *ValidationError is returned, the error map is
// populated for display, and fn is never called.
func (f *Form) Submit(fn func(values map[string]string) error) error {
	f.errs = make(map[string]string)
	for _, fld := range f.fields {
		if msg := f.check(fld); msg != "" {
			f.errs[fld.Name] = msg
		}
	}
	if len(f.errs) > 0 {
		return &ValidationError{Fields: f.Errors()}
	}
	return fn(f.Values())
}

func (f *Form) revalidate(name string) {
	for _, fld := range f.fields {
		if fld.Name != name {
			continue
		}
		if msg := f.check(fld); msg != "" {
			f.errs[name] = msg
		} else {
			delete(f.errs, name)
		}
		return
	}
}

// check returns the message of the first failing rule, or "".
func (f *Form) check(fld Field) string {
	value := f.values[fld.Name]
	for _, rule := range fld.Rules {
		var err error
		if rule.Other != "" {
			err = validate.VarWithValue(value, f.values[rule.Other], rule.Tag)
		} else {
			err = validate.Var(value, rule.Tag)
		}
		if err != nil {
			if rule.Message != "" {
				return rule.Message
			}
			return friendlyMessage(fld.Name, rule.Tag)
		}
	}
	return ""
}

// friendlyMessage is the fallback when a rule carries no message of its own.
func friendlyMessage(field, tag string) string {
	name, param, _ := strings.Cut(tag, "=")
	switch name {
	case "required":
		return field + " is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", param)
	case "max":
		return fmt.Sprintf("must not exceed %s characters", param)
	case "eqfield":
		return "fields do not match"
	default:
		return field + " is invalid"
	}
}

// LoginForm builds the sign-in form.
func LoginForm() *Form {
	return NewForm(
		Field{Name: "email", Rules: []Rule{
			{Tag: "required", Message: "Email is required"},
			{Tag: "email", Message: "Invalid email address"},
		}},
		Field{Name: "password", Rules: []Rule{
			{Tag: "required", Message: "Password is required"},
			{Tag: "min=6", Message: "Password must be at least 6 characters"},
		}},
	)
}

// RegisterForm builds the account-creation form. Confirmation must equal the
// password and the terms checkbox must be ticked before submission unlocks.
func RegisterForm() *Form {
	return NewForm(
		Field{Name: "name", Rules: []Rule{
			{Tag: "required", Message: "Name is required"},
		}},
		Field{Name: "email", Rules: []Rule{
			{Tag: "required", Message: "Email is required"},
			{Tag: "email", Message: "Invalid email address"},
		}},
		Field{Name: "password", Rules: []Rule{
			{Tag: "required", Message: "Password is required"},
			{Tag: "min=8", Message: "Password must be at least 8 characters"},
		}},
		Field{Name: "confirmPassword", Rules: []Rule{
			{Tag: "required", Message: "Confirm Password is required"},
			{Tag: "eqfield", Other: "password", Message: "Passwords do not match"},
		}},
		Field{Name: "agreeToTerms", Rules: []Rule{
			{Tag: "eq=true", Message: "You must agree to the terms"},
		}},
	)
}

// ProfileForm builds the profile editor form. The password is optional; a
// blank value keeps the current one.
func ProfileForm() *Form {
	return NewForm(
		Field{Name: "name", Rules: []Rule{
			{Tag: "required", Message: "Name is required"},
		}},
		Field{Name: "email", Rules: []Rule{
			{Tag: "required", Message: "Email is required"},
			{Tag: "email", Message: "Invalid email address"},
		}},
		Field{Name: "bio", Rules: []Rule{
			{Tag: "required", Message: "Bio is required"},
		}},
		Field{Name: "password", Rules: []Rule{
			{Tag: "omitempty,min=8", Message: "Password must be at least 8 characters"},
		}},
	)
}

// BookForm builds the add/edit book form. Every field is required.
func BookForm() *Form {
	return NewForm(
		Field{Name: "title", Rules: []Rule{
			{Tag: "required", Message: "Title is required"},
		}},
		Field{Name: "author", Rules: []Rule{
			{Tag: "required", Message: "Author is required"},
		}},
		Field{Name: "genre", Rules: []Rule{
			{Tag: "required", Message: "Genre is required"},
		}},
		Field{Name: "description", Rules: []Rule{
			{Tag: "required", Message: "Description is required"},
		}},
		Field{Name: "publicationDate", Rules: []Rule{
			{Tag: "required", Message: "Publication date is required"},
		}},
	)
}

// PasswordStrength is the register screen's live password meter: one point
// per satisfied requirement, five total.
type PasswordStrength struct {
	Score     int
	Length    bool
	Uppercase bool
	Lowercase bool
	Number    bool
	Special   bool
}

// CheckPasswordStrength scores a candidate password.
func CheckPasswordStrength(password string) PasswordStrength {
	s := PasswordStrength{Length: len(password) >= 8}
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			s.Uppercase = true
		case unicode.IsLower(r):
			s.Lowercase = true
		case unicode.IsDigit(r):
			s.Number = true
		default:
			s.Special = true
		}
	}
	for _, ok := range []bool{s.Length, s.Uppercase, s.Lowercase, s.Number, s.Special} {
		if ok {
			s.Score++
		}
	}
	return s
}
