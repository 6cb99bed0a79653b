package client

import (
	"errors"
	"sort"
	"strings"
	"unicode"

	"github.com/go-playground/validator"
)

// Сообщения ошибок формы.
const (
	MsgInvalidName     = "Name must contain only letters and be at least 2 characters long"
	MsgInvalidEmail    = "Please enter a valid email address"
	MsgInvalidPassword = "Password must be 3-8 characters with at least one letter and one number"
	MsgEmptyCredential = "Email and password are required"
)

// RegisterForm — поля формы регистрации.
type RegisterForm struct {
	Name     string `validate:"required,min=2,alpha"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=3,max=8,alphanum"`
}

// FormErrors — ошибки валидации по именам полей.
type FormErrors map[string]string

func (e FormErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, e[f])
	}
	return strings.Join(msgs, "; ")
}

var formValidator = validator.New()

// Validate проверяет форму регистрации до отправки на сервер.
func (f RegisterForm) Validate() error {
	errs := FormErrors{}

	if err := formValidator.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			switch fe.Field() {
			case "Name":
				errs["name"] = MsgInvalidName
			case "Email":
				errs["email"] = MsgInvalidEmail
			case "Password":
				errs["password"] = MsgInvalidPassword
			}
		}
	}
	if _, bad := errs["password"]; !bad && !hasLetterAndDigit(f.Password) {
		errs["password"] = MsgInvalidPassword
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateLogin проверяет, что email и пароль заполнены.
// Политика пароля при входе не применяется: её проверяет только регистрация.
func ValidateLogin(email, password string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		return FormErrors{"credentials": MsgEmptyCredential}
	}
	return nil
}

func hasLetterAndDigit(s string) bool {
	var letter, digit bool
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return letter && digit
}
