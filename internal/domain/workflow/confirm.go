package workflow

import (
	"fmt"
	"strings"

	"github.com/diillson/aws-cost-optimizer-go/internal/domain/entity"
)

// MatchesConfirmation checks the phrase typed before a live optimization.
// The input is trimmed and lowercased, then compared with the technique's
// lowercased name, its lowercased id and, unless strict, the first word of
// its name.
func MatchesConfirmation(t entity.Technique, input string, strict bool) bool {
	typed := strings.ToLower(strings.TrimSpace(input))
	if typed == "" {
		return false
	}
	name := strings.ToLower(strings.TrimSpace(t.Name))
	id := strings.ToLower(strings.TrimSpace(t.ID))
	if typed == name || typed == id {
		return true
	}
	if strict {
		return false
	}
	words := strings.Fields(name)
	return len(words) > 0 && typed == words[0]
}

// MismatchError is returned when the typed phrase doesn't match.
type MismatchError struct {
	Required string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("please type %q to confirm", e.Required)
}

func newMismatch(t entity.Technique) *MismatchError {
	return &MismatchError{Required: t.Name}
}
