package detector

import (
	"regexp"
	"slices"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/go-enry/go-enry/v2"

	"github.com/valpere/codeconv/internal/language"
)

// signatures are constructs that rarely appear outside one language. A
// snippet scores one point per distinct pattern that matches.
var signatures = map[language.Language][]*regexp.Regexp{
	language.Python: compile(
		`^\s*def \w+\(.*\)\s*(->.*)?:\s*$`,
		`^\s*import [\w.]+(\s+as \w+)?\s*$`,
		`^\s*from [\w.]+ import `,
		`^\s*(if|elif|while|for|with|try|else|except)\b.*:\s*$`,
		`^\s*class \w+(\(.*\))?:\s*$`,
		`\bprint\(`,
		`\b(None|elif|__name__|__init__)\b`,
	),
	language.JavaScript: compile(
		`\b(const|let|var) \w+ =`,
		`=>`,
		`\bfunction\b`,
		`\bconsole\.\w+\(`,
		`\brequire\(`,
		`\bmodule\.exports\b|^\s*export (default )?`,
		`===|!==`,
	),
	language.Java: compile(
		`^\s*package [\w.]+;`,
		`^\s*import java\.`,
		`\b(public|private|protected)\s+(static\s+)?(final\s+)?[\w<>\[\]]+\s+\w+\s*\(`,
		`\bpublic (final |abstract )?class\b`,
		`\bSystem\.(out|err)\.print`,
		`\bString\[\] \w+`,
		`@Override\b`,
	),
	language.CPP: compile(
		`^\s*#include\s*[<"]`,
		`\bstd::`,
		`\bcout\s*<<`,
		`\busing namespace\b`,
		`\btemplate\s*<`,
		`\bint main\s*\(`,
		`\bnullptr\b`,
	),
	language.Ruby: compile(
		`^\s*def [\w.]+[?!]?(\([^)]*\))?\s*$`,
		`^\s*end\s*$`,
		`\bputs\b`,
		`^\s*require(_relative)? ['"]`,
		`\battr_(accessor|reader|writer)\b`,
		`\bdo\s*\|`,
		`\belsif\b|#\{`,
	),
}

func compile(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(`(?m)` + p)
	}
	return out
}

// Detector guesses the programming language of a snippet. A shebang line
// decides first, then language signatures, with go-enry's classifier
// breaking ties. Chroma's lexer analysers are the last resort. Guesses
// outside the supported label set are discarded.
type Detector struct {
	analyse func(text string) chroma.Lexer
}

func New() *Detector {
	return &Detector{analyse: lexers.Analyse}
}

// DetectLexer returns the name of the best-matching chroma lexer, which may
// be a language codeconv does not convert.
func (d *Detector) DetectLexer(code string) (string, bool) {
	if strings.TrimSpace(code) == "" {
		return "", false
	}
	lexer := d.analyse(code)
	if lexer == nil {
		return "", false
	}
	return lexer.Config().Name, true
}

func (d *Detector) Detect(code string) (language.Language, bool) {
	if strings.TrimSpace(code) == "" {
		return "", false
	}
	if l, ok := byShebang(code); ok {
		return l, true
	}
	if l, ok := bySignature(code); ok {
		return l, true
	}

	name, ok := d.DetectLexer(code)
	if !ok {
		return "", false
	}
	l, err := language.Parse(name)
	if err != nil {
		return "", false
	}
	return l, true
}

func byShebang(code string) (language.Language, bool) {
	return single(enry.GetLanguagesByShebang("", []byte(code), nil))
}

func bySignature(code string) (language.Language, bool) {
	best := 0
	var top []language.Language
	for _, l := range language.All() {
		score := 0
		for _, re := range signatures[l] {
			if re.MatchString(code) {
				score++
			}
		}
		switch {
		case score == 0 || score < best:
		case score > best:
			best = score
			top = []language.Language{l}
		default:
			top = append(top, l)
		}
	}

	switch len(top) {
	case 0:
		return "", false
	case 1:
		return top[0], true
	}

	candidates := make([]string, len(top))
	for i, l := range top {
		candidates[i] = string(l)
	}
	ranked := enry.GetLanguagesByClassifier("", []byte(code), candidates)
	if len(ranked) == 0 {
		return "", false
	}
	return supported(ranked[0])
}

// single returns the one supported language among names, if exactly one is.
func single(names []string) (language.Language, bool) {
	var found []language.Language
	for _, name := range names {
		if l, ok := supported(name); ok && !slices.Contains(found, l) {
			found = append(found, l)
		}
	}
	if len(found) != 1 {
		return "", false
	}
	return found[0], true
}

func supported(name string) (language.Language, bool) {
	l, err := language.Parse(name)
	if err != nil {
		return "", false
	}
	return l, true
}
