package internal

import "github.com/valpere/codeconv/internal/language"

// ConversionRequest is built fresh for every convert action and never stored.
// An empty SourceLanguage means the source is unknown.
type ConversionRequest struct {
	SourceText     string            `json:"source_text"`
	SourceLanguage language.Language `json:"source_language,omitempty"`
	TargetLanguage language.Language `json:"target_language"`
}

// ConversionResult holds exactly one of Text or ErrorMessage once a
// conversion has completed.
type ConversionResult struct {
	Text         string `json:"text,omitempty"`
	ErrorMessage string `json:"error,omitempty"`
}

func (r ConversionResult) Failed() bool {
	return r.ErrorMessage != ""
}
