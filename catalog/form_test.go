package catalog

import (
	"errors"
	"testing"
)

func TestLoginFormValidation(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		field    string
		message  string
	}{
		{"valid", "user@example.com", "secret1", "", ""},
		{"missing email", "", "secret1", "email", "Email is required"},
		{"bad email", "not-an-email", "secret1", "email", "Invalid email address"},
		{"missing password", "user@example.com", "", "password", "Password is required"},
		{"short password", "user@example.com", "12345", "password", "Password must be at least 6 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := LoginForm()
			form.Set("email", tt.email)
			form.Set("password", tt.password)

			if tt.field == "" {
				if !form.Valid() {
					t.Fatalf("want valid, errors = %v", form.Errors())
				}
				return
			}
			if form.Valid() {
				t.Fatal("want invalid")
			}
			msg, ok := form.Error(tt.field)
			if !ok || msg != tt.message {
				t.Fatalf("error(%s) = %q, %v; want %q", tt.field, msg, ok, tt.message)
			}
		})
	}
}

func validRegisterValues() map[string]string {
	return map[string]string{
		"name":            "Alice",
		"email":           "alice@example.com",
		"password":        "Password1!",
		"confirmPassword": "Password1!",
		"agreeToTerms":    "true",
	}
}

func TestRegisterFormPasswordMismatch(t *testing.T) {
	form := RegisterForm()
	form.Reset(validRegisterValues())
	form.Set("confirmPassword", "Password2!")

	msg, ok := form.Error("confirmPassword")
	if !ok || msg != "Passwords do not match" {
		t.Fatalf("error = %q, %v", msg, ok)
	}

	// Fixing the mismatch through either field clears the error.
	form.Set("confirmPassword", "Password1!")
	if _, ok := form.Error("confirmPassword"); ok {
		t.Fatal("error not cleared after matching confirmation")
	}
}

// Editing the password re-checks its confirmation, not just the field that
// changed.
func TestRegisterFormDependentRevalidation(t *testing.T) {
	form := RegisterForm()
	form.Reset(validRegisterValues())
	if !form.Valid() {
		t.Fatalf("seed values invalid: %v", form.Errors())
	}

	form.Set("password", "Different1!")
	msg, ok := form.Error("confirmPassword")
	if !ok || msg != "Passwords do not match" {
		t.Fatalf("confirmation not revalidated, error = %q, %v", msg, ok)
	}

	form.Set("confirmPassword", "Different1!")
	if !form.Valid() {
		t.Fatalf("want valid after resync, errors = %v", form.Errors())
	}
}

func TestRegisterFormRequiresTerms(t *testing.T) {
	form := RegisterForm()
	values := validRegisterValues()
	values["agreeToTerms"] = "false"
	form.Reset(values)

	err := form.Submit(func(map[string]string) error {
		t.Fatal("handler must not run while invalid")
		return nil
	})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("want *ValidationError, got %v", err)
	}
	if verr.Fields["agreeToTerms"] != "You must agree to the terms" {
		t.Fatalf("fields = %v", verr.Fields)
	}
}

func TestRegisterFormShortPassword(t *testing.T) {
	form := RegisterForm()
	form.Set("password", "short7!")
	msg, ok := form.Error("password")
	if !ok || msg != "Password must be at least 8 characters" {
		t.Fatalf("error = %q, %v", msg, ok)
	}
}

func TestSubmitPassesValuesVerbatim(t *testing.T) {
	form := LoginForm()
	form.Set("email", "user@example.com")
	form.Set("password", "secret1")

	var got map[string]string
	err := form.Submit(func(values map[string]string) error {
		got = values
		return nil
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if got["email"] != "user@example.com" || got["password"] != "secret1" {
		t.Fatalf("values = %v", got)
	}
}

func TestSubmitPropagatesHandlerError(t *testing.T) {
	form := LoginForm()
	form.Set("email", "user@example.com")
	form.Set("password", "secret1")

	boom := errors.New("boom")
	if err := form.Submit(func(map[string]string) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("submit error = %v, want boom", err)
	}
}

func TestResetSeedsAndClearsErrors(t *testing.T) {
	form := BookForm()
	form.Set("title", "")
	if _, ok := form.Error("title"); !ok {
		t.Fatal("want error for blank title")
	}

	form.Reset(map[string]string{
		"title":           "Dune",
		"author":          "Frank Herbert",
		"genre":           "Science Fiction",
		"description":     "Desert planet politics",
		"publicationDate": "1965-08-01",
	})
	if len(form.Errors()) != 0 {
		t.Fatalf("errors after reset = %v", form.Errors())
	}
	if !form.Valid() {
		t.Fatal("seeded form should be valid")
	}
	if form.Value("title") != "Dune" {
		t.Fatalf("title = %q", form.Value("title"))
	}

	// A reset with missing names blanks those fields.
	form.Reset(map[string]string{"title": "Dune"})
	if form.Value("author") != "" {
		t.Fatalf("author = %q, want blank", form.Value("author"))
	}
	if form.Valid() {
		t.Fatal("partially seeded form should be invalid")
	}
}

func TestProfileFormOptionalPassword(t *testing.T) {
	form := ProfileForm()
	form.Reset(map[string]string{
		"name":  "Alice",
		"email": "alice@example.com",
		"bio":   "avid reader",
	})

	// Blank keeps the current password and passes validation.
	if !form.Valid() {
		t.Fatalf("blank password rejected: %v", form.Errors())
	}

	form.Set("password", "short")
	msg, ok := form.Error("password")
	if !ok || msg != "Password must be at least 8 characters" {
		t.Fatalf("error = %q, %v", msg, ok)
	}

	form.Set("password", "longenough9")
	if !form.Valid() {
		t.Fatalf("valid password rejected: %v", form.Errors())
	}
}

func TestValidDoesNotTouchErrorMap(t *testing.T) {
	form := LoginForm()
	if form.Valid() {
		t.Fatal("blank form should be invalid")
	}
	if len(form.Errors()) != 0 {
		t.Fatalf("Valid must not populate errors, got %v", form.Errors())
	}
}

func TestCheckPasswordStrength(t *testing.T) {
	tests := []struct {
		password string
		score    int
	}{
		{"", 0},
		{"abc", 1},
		{"abcdefgh", 2},
		{"Abcdefgh", 3},
		{"Abcdefg1", 4},
		{"Abcdef1!", 5},
		{"A1!", 3},
	}
	for _, tt := range tests {
		if got := CheckPasswordStrength(tt.password); got.Score != tt.score {
			t.Errorf("CheckPasswordStrength(%q).Score = %d, want %d", tt.password, got.Score, tt.score)
		}
	}

	s := CheckPasswordStrength("Tr0ub4dor&3")
	if !s.Length || !s.Uppercase || !s.Lowercase || !s.Number || !s.Special {
		t.Fatalf("requirements = %+v", s)
	}
}
