package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valpere/codeconv/internal/language"
)

func TestNew_Defaults(t *testing.T) {
	b := New()

	assert.Equal(t, "", b.Text())
	assert.Equal(t, DefaultMode, b.Mode())
	assert.Equal(t, DefaultTheme, b.Theme())
	assert.False(t, b.ReadOnly())
}

func TestSetText_FiresOnChange(t *testing.T) {
	var got []string
	b := New(OnChange(func(s string) { got = append(got, s) }))

	require.NoError(t, b.SetText("print('hi')"))
	require.NoError(t, b.SetText(""))

	assert.Equal(t, []string{"print('hi')", ""}, got)
	assert.Equal(t, "", b.Text())
}

func TestSetText_ReadOnly(t *testing.T) {
	called := false
	b := New(ReadOnly(), OnChange(func(string) { called = true }))

	err := b.SetText("x = 1")
	assert.ErrorIs(t, err, ErrReadOnly)
	assert.Equal(t, "", b.Text())
	assert.False(t, called)
}

func TestLoad_BypassesReadOnlyAndHook(t *testing.T) {
	called := false
	b := New(ReadOnly(), OnChange(func(string) { called = true }))

	b.Load("console.log('hi')")

	assert.Equal(t, "console.log('hi')", b.Text())
	assert.False(t, called)
}

func TestDisplayChanges_KeepText(t *testing.T) {
	const code = "def greet():\n    return 'hi'\n"
	b := New()
	require.NoError(t, b.SetText(code))

	for _, m := range Modes() {
		b.SetMode(m)
		assert.Equal(t, code, b.Text(), "mode %s changed the text", m)
	}
	b.SetTheme(ThemeLight)
	assert.Equal(t, code, b.Text())
	b.ToggleTheme()
	assert.Equal(t, code, b.Text())
	b.SetMode("cobol")
	assert.Equal(t, code, b.Text())
}

func TestMode_UnknownFallsBack(t *testing.T) {
	b := New()
	b.SetMode("ruby")
	assert.Equal(t, ModeJavaScript, b.Mode())

	b.SetMode(ModeCSS)
	assert.Equal(t, ModeCSS, b.Mode())
}

func TestToggleTheme(t *testing.T) {
	b := New()
	assert.Equal(t, ThemeLight, b.ToggleTheme())
	assert.Equal(t, ThemeDark, b.ToggleTheme())
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in     string
		want   Mode
		wantOK bool
	}{
		{"python", ModePython, true},
		{" HTML ", ModeHTML, true},
		{"css", ModeCSS, true},
		{"Python", ModePython, true},
		{"Ruby", ModeJavaScript, true},
		{"C++", ModeJavaScript, true},
		{"brainfuck", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseMode(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTheme(t *testing.T) {
	th, ok := ParseTheme("Light")
	assert.True(t, ok)
	assert.Equal(t, ThemeLight, th)

	_, ok = ParseTheme("solarized")
	assert.False(t, ok)
}

func TestModeFor(t *testing.T) {
	assert.Equal(t, ModePython, ModeFor(language.Python))
	assert.Equal(t, ModeJavaScript, ModeFor(language.JavaScript))
	assert.Equal(t, ModeJavaScript, ModeFor(language.Java))
}

func TestDisplay(t *testing.T) {
	b := New(WithMode(ModePython))
	b.SetTheme(ThemeLight)
	assert.Equal(t, Display{Mode: ModePython, Theme: ThemeLight}, b.Display())
}
