package render

import (
	"errors"
	"strings"
)

var ErrUsernameEmpty = errors.New("username cannot be empty")

// ValidateUsername trims login input. Any non-blank nickname is accepted as typed;
// escaping happens where it is displayed.
func ValidateUsername(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", ErrUsernameEmpty
	}
	return name, nil
}
