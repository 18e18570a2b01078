// Package validator checks that converted code looks like the requested
// target language.
package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/valpere/codeconv/internal/detector"
	"github.com/valpere/codeconv/internal/language"
)

// minValidationLength is the minimum rune count required to attempt detection.
// Shorter snippets produce unreliable results and are accepted without validation.
const minValidationLength = 20

// ErrMismatch wraps every validation failure caused by a detected language
// other than the target.
var ErrMismatch = errors.New("language mismatch")

type languageDetector interface {
	Detect(code string) (language.Language, bool)
}

type Validator struct {
	det languageDetector
}

func New() *Validator {
	return &Validator{det: detector.New()}
}

// Check returns nil when code appears to be written in target, or when the
// language cannot be determined. Only a confident guess naming a different
// supported language is an error.
func (v *Validator) Check(code string, target language.Language) error {
	if target == "" {
		return nil
	}

	text := strings.TrimSpace(code)
	if text == "" {
		return fmt.Errorf("converted code is empty")
	}

	if len([]rune(text)) < minValidationLength {
		return nil
	}

	detected, ok := v.det.Detect(text)
	if !ok {
		return nil
	}

	if detected != target {
		return fmt.Errorf("%w: expected %s but detected %s", ErrMismatch, target, detected)
	}

	return nil
}
