package domain

import "errors"

// Password is only ever held in memory.
type Password struct {
	s string
}

func NewPassword(s string) (Password, error) {
	if s == "" {
		return Password{}, errors.New("password can't be an empty string")
	}
	return Password{s: s}, nil
}

func (p Password) String() string {
	return p.s
}

func (p Password) IsZero() bool {
	return p.s == ""
}
