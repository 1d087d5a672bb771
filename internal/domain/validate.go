package domain

import (
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// illegalNameChars are rejected in folder and file names so names stay
// portable across the storage backends the server supports.
var illegalNameChars = regexp.MustCompile(`[/\\:*?"<>|]`)

// ValidateName checks a folder or file name before it is sent to the
// backend, so obviously bad input fails at the point of entry instead of
// as a round-trip validation error.
func ValidateName(name string) error {
	err := validation.Validate(name,
		validation.Required.Error("name cannot be empty"),
		validation.Length(1, 255),
		validation.By(func(value interface{}) error {
			s, _ := value.(string)
			if illegalNameChars.MatchString(s) {
				return fmt.Errorf(`name contains illegal characters (one of / \ : * ? " < > |)`)
			}
			if strings.TrimSpace(s) != s {
				return fmt.Errorf("name cannot start or end with spaces")
			}
			if strings.HasPrefix(s, ".") && strings.Trim(s, ".") == "" {
				return fmt.Errorf("name cannot consist of dots only")
			}
			return nil
		}),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}
