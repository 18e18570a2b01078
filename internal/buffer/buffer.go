// Package buffer implements the in-memory text buffers that sit on either
// side of a conversion. A buffer carries display settings (highlight mode
// and theme) alongside its text; changing them never touches the text.
package buffer

import (
	"errors"
	"strings"
	"sync"

	"github.com/valpere/codeconv/internal/language"
)

// Mode selects the syntax highlighting applied when a buffer is shown.
type Mode string

const (
	ModeJavaScript Mode = "javascript"
	ModePython     Mode = "python"
	ModeHTML       Mode = "html"
	ModeCSS        Mode = "css"

	DefaultMode = ModeJavaScript
)

// Theme is the editor colour scheme.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"

	DefaultTheme = ThemeDark
)

// ErrReadOnly is returned when a user edit targets a read-only buffer.
var ErrReadOnly = errors.New("buffer is read-only")

var modes = []Mode{ModeJavaScript, ModePython, ModeHTML, ModeCSS}

// Modes returns the highlight modes a buffer can display.
func Modes() []Mode {
	out := make([]Mode, len(modes))
	copy(out, modes)
	return out
}

// ParseMode accepts a mode name or a language label ("Python").
// Unknown names report false.
func ParseMode(s string) (Mode, bool) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	for _, v := range modes {
		if v == m {
			return m, true
		}
	}
	if l, err := language.Parse(s); err == nil {
		return ModeFor(l), true
	}
	return "", false
}

// ModeFor maps a language label to the closest highlight mode.
// Labels without a dedicated mode fall back to DefaultMode.
func ModeFor(l language.Language) Mode {
	switch l {
	case language.Python:
		return ModePython
	default:
		return DefaultMode
	}
}

// ParseTheme reports false for anything other than dark or light.
func ParseTheme(s string) (Theme, bool) {
	switch Theme(strings.ToLower(strings.TrimSpace(s))) {
	case ThemeDark:
		return ThemeDark, true
	case ThemeLight:
		return ThemeLight, true
	}
	return "", false
}

// Display is the presentation state of a buffer.
type Display struct {
	Mode  Mode  `json:"mode"`
	Theme Theme `json:"theme"`
}

type Option func(*Buffer)

// ReadOnly rejects SetText. Load still works.
func ReadOnly() Option {
	return func(b *Buffer) { b.readOnly = true }
}

// WithMode sets the initial highlight mode.
func WithMode(m Mode) Option {
	return func(b *Buffer) { b.mode = m }
}

// OnChange registers fn to run after every successful SetText.
func OnChange(fn func(string)) Option {
	return func(b *Buffer) { b.onChange = fn }
}

// Buffer is safe for concurrent use.
type Buffer struct {
	mu       sync.RWMutex
	text     string
	mode     Mode
	theme    Theme
	readOnly bool
	onChange func(string)
}

func New(opts ...Option) *Buffer {
	b := &Buffer{
		mode:  DefaultMode,
		theme: DefaultTheme,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Buffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.text
}

// SetText is the user edit path: it honours ReadOnly and fires OnChange.
func (b *Buffer) SetText(s string) error {
	b.mu.Lock()
	if b.readOnly {
		b.mu.Unlock()
		return ErrReadOnly
	}
	b.text = s
	fn := b.onChange
	b.mu.Unlock()

	if fn != nil {
		fn(s)
	}
	return nil
}

// Load replaces the text programmatically. It ignores ReadOnly and does
// not fire OnChange.
func (b *Buffer) Load(s string) {
	b.mu.Lock()
	b.text = s
	b.mu.Unlock()
}

func (b *Buffer) ReadOnly() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.readOnly
}

// Mode returns the effective highlight mode. A mode set to an unknown
// value displays as DefaultMode.
func (b *Buffer) Mode() Mode {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, v := range modes {
		if v == b.mode {
			return v
		}
	}
	return DefaultMode
}

func (b *Buffer) SetMode(m Mode) {
	b.mu.Lock()
	b.mode = m
	b.mu.Unlock()
}

func (b *Buffer) Theme() Theme {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.theme
}

func (b *Buffer) SetTheme(t Theme) {
	b.mu.Lock()
	b.theme = t
	b.mu.Unlock()
}

// ToggleTheme flips between dark and light and returns the new theme.
func (b *Buffer) ToggleTheme() Theme {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.theme == ThemeDark {
		b.theme = ThemeLight
	} else {
		b.theme = ThemeDark
	}
	return b.theme
}

func (b *Buffer) Display() Display {
	return Display{Mode: b.Mode(), Theme: b.Theme()}
}
