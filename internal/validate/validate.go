// Package validate holds the field validators for registry payloads.
// Validators append to a shared Violations accumulator instead of returning on
// the first failure, so one response can report every problem in a payload.
package validate

import (
	"net/http"
	"strings"

	"github.com/mateusbrg/user-registry/internal/models"
)

const (
	lowercaseLetters = "abcdefghijklmnopqrstuvwxyz"
	uppercaseLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits           = "0123456789"
	specialChars     = "@$#&!*_"
)

// Violation is one field-level rule failure.
type Violation struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Violations accumulates rule failures across a whole payload. It implements
// error so services can return the batch as a single value.
type Violations []Violation

func (v Violations) Error() string {
	msgs := make([]string, len(v))
	for i, violation := range v {
		msgs[i] = violation.Message
	}
	return strings.Join(msgs, "; ")
}

// Add appends a violation with the standard bad-request code.
func (v *Violations) Add(message string) {
	*v = append(*v, Violation{Code: http.StatusBadRequest, Message: message})
}

// Password checks the password policy. Every rule runs regardless of earlier
// failures, so a maximally weak password produces five violations.
func Password(password string, v *Violations) {
	if len(password) < 8 {
		v.Add("password must have at least 8 characters")
	}
	if !strings.ContainsAny(password, lowercaseLetters) {
		v.Add("password must have at least 1 lowercase character")
	}
	if !strings.ContainsAny(password, uppercaseLetters) {
		v.Add("password must have at least 1 uppercase character")
	}
	if !strings.ContainsAny(password, specialChars) {
		v.Add("password must have at least 1 special character, accepted characters: @, $, #, &, !, *, _")
	}
	if !strings.ContainsAny(password, digits) {
		v.Add("password must have at least 1 number")
	}
}

// Email applies a minimal syntactic screen: "@" at index 2 or later, no "."
// immediately adjacent to the "@", and no trailing ".". Everything else is
// accepted.
func Email(email string, v *Violations) {
	at := strings.Index(email, "@")
	switch {
	case at < 2:
		v.Add("invalid email")
	case email[at-1] == '.':
		v.Add("invalid email")
	case at+1 < len(email) && email[at+1] == '.':
		v.Add("invalid email")
	case strings.HasSuffix(email, "."):
		v.Add("invalid email")
	}
}

// Permissions checks that every element is a known permission value. An empty
// list is allowed; a user may hold no permissions.
func Permissions(perms []string, v *Violations) {
	for _, perm := range perms {
		if !models.Permission(perm).Valid() {
			v.Add("permissions must be a list containing only: CREATE, READ, UPDATE and DELETE")
			return
		}
	}
}
