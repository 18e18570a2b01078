// Package postprocess removes common LLM artifacts from conversion output.
//
// It is applied to the raw text returned by every completion backend before
// the result reaches the output buffer.
package postprocess

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/valpere/codeconv/internal/markdown"
)

// Clean removes LLM artifacts from text in three phases and returns the
// trimmed result:
//  1. Thinking / reasoning block removal
//  2. Instruction echo removal
//  3. Code fence unwrapping, only when what is left opens with a fence
func Clean(text string) string {
	text = removeThinkingBlocks(text)
	text = removeInstructionEchoes(text)
	if code, ok := unwrapCodeFence(text); ok {
		return trimCode(code)
	}
	return trimCode(text)
}

// --- Phase 1: thinking blocks ---

var thinkingTags = []string{"thinking", "think", "reasoning", "reflection"}

var (
	// closedThinkingRe matches a whole block. RE2 has no backreferences,
	// so every tag gets its own alternative.
	closedThinkingRe = regexp.MustCompile(`(?is)` + thinkingAlternatives(`<%[1]s>.*?</%[1]s>`))

	// openThinkingRe matches a block the model never closed, up to the end
	// of the reply.
	openThinkingRe = regexp.MustCompile(`(?is)(?:` + thinkingAlternatives(`<%[1]s>`) + `).*$`)
)

func thinkingAlternatives(format string) string {
	alts := make([]string, len(thinkingTags))
	for i, tag := range thinkingTags {
		alts[i] = fmt.Sprintf(format, tag)
	}
	return strings.Join(alts, "|")
}

// removeThinkingBlocks keeps surrounding whitespace so the first line of
// code keeps its indentation; trimCode tidies the edges later.
func removeThinkingBlocks(text string) string {
	text = closedThinkingRe.ReplaceAllString(text, "")
	return openThinkingRe.ReplaceAllString(text, "")
}

// --- Phase 2: instruction echoes ---

// echoBody matches "[the|your] [up to two words] code|version|snippet
// [in|converted to X]:" as in "the equivalent Python code:".
const echoBody = `here(?:'s| is)(?: the| your)? (?:[\w+#]+ ){0,2}(?:code|version|conversion|translation|snippet)(?: (?:in|converted to|translated to) [\w+#]+)?\s*:`

// echoPatterns match introductory phrases that LLMs sometimes prepend even
// when instructed not to. Each pattern is anchored to the start of the string
// and requires a colon to reduce false positives on legitimate content.
var echoPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^` + echoBody),
	regexp.MustCompile(`(?i)^(?:the )?(?:converted|translated) (?:code|version)(?: in [\w+#]+)?\s*:`),
	regexp.MustCompile(`(?i)^(?:certainly|sure|of course)[,.!]? ` + echoBody),
}

func removeInstructionEchoes(text string) string {
	for _, re := range echoPatterns {
		trimmed := strings.TrimLeft(text, " \t\r\n")
		if loc := re.FindStringIndex(trimmed); loc != nil {
			text = strings.TrimSpace(trimmed[loc[1]:])
		}
	}
	return text
}

// --- Phase 3: code fences ---

// unwrapCodeFence returns the first block of a reply that starts with a
// fence. Fences further down are part of the code, e.g. inside a docstring.
func unwrapCodeFence(text string) (string, bool) {
	text = strings.TrimLeft(text, " \t\r\n")
	if !strings.HasPrefix(text, "```") && !strings.HasPrefix(text, "~~~") {
		return "", false
	}
	block, ok := markdown.FirstCodeBlock([]byte(text))
	if !ok || strings.TrimSpace(block.Code) == "" {
		return "", false
	}
	return block.Code, true
}

// trimCode drops blank lines at either end and trailing whitespace, keeping
// the indentation of the first code line.
func trimCode(text string) string {
	text = strings.TrimRight(text, " \t\r\n")
	for {
		i := strings.IndexByte(text, '\n')
		if i < 0 || strings.TrimSpace(text[:i]) != "" {
			break
		}
		text = text[i+1:]
	}
	if strings.TrimSpace(text) == "" {
		return ""
	}
	return text
}
