package completion

import (
	"fmt"
	"strings"

	"github.com/valpere/codeconv/internal/language"
)

// buildSystemPrompt returns the instruction sent alongside the user's code.
// The source language is mentioned only when known.
func buildSystemPrompt(source, target language.Language) string {
	var sb strings.Builder

	sb.WriteString("You are a code converter. ")
	if source != "" {
		sb.WriteString(fmt.Sprintf("Convert the user's %s code to %s.\n", source, target))
	} else {
		sb.WriteString(fmt.Sprintf("Convert the user's code to %s.\n", target))
	}
	sb.WriteString("Keep the behaviour identical and use idiomatic ")
	sb.WriteString(string(target))
	sb.WriteString(".\n")
	sb.WriteString("Only respond with the converted code, nothing else. No explanations, no markdown fences.")

	return sb.String()
}
