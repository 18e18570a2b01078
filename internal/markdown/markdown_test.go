package markdown

import "testing"

func TestFirstCodeBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantOK   bool
		wantInfo string
		wantCode string
	}{
		{
			name:   "no fence",
			input:  "console.log('hi')",
			wantOK: false,
		},
		{
			name:     "fence with info string",
			input:    "```javascript\nconsole.log('hi')\n```",
			wantOK:   true,
			wantInfo: "javascript",
			wantCode: "console.log('hi')\n",
		},
		{
			name:     "fence without info string",
			input:    "```\nputs 'hi'\n```\n",
			wantOK:   true,
			wantInfo: "",
			wantCode: "puts 'hi'\n",
		},
		{
			name:     "prose around fence",
			input:    "Here you go:\n\n```python\nprint('hi')\n```\n\nThis prints hi.",
			wantOK:   true,
			wantInfo: "python",
			wantCode: "print('hi')\n",
		},
		{
			name:     "unclosed fence",
			input:    "```java\nclass A {}\n",
			wantOK:   true,
			wantInfo: "java",
			wantCode: "class A {}\n",
		},
		{
			name:     "tilde fence keeps indentation",
			input:    "~~~ruby\ndef hi\n  puts 'hi'\nend\n~~~",
			wantOK:   true,
			wantInfo: "ruby",
			wantCode: "def hi\n  puts 'hi'\nend\n",
		},
		{
			name:   "indented code block is not fenced",
			input:  "    x = 1\n",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			block, ok := FirstCodeBlock([]byte(tt.input))
			if ok != tt.wantOK {
				t.Fatalf("FirstCodeBlock ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if block.Info != tt.wantInfo {
				t.Errorf("Info = %q, want %q", block.Info, tt.wantInfo)
			}
			if block.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", block.Code, tt.wantCode)
			}
		})
	}
}

func TestCodeBlocks_Order(t *testing.T) {
	input := "```js\na()\n```\n\ntext\n\n```py\nb()\n```\n"

	blocks := codeBlocks([]byte(input), 0)
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	if blocks[0].Info != "js" || blocks[0].Code != "a()\n" {
		t.Errorf("first block = %+v", blocks[0])
	}
	if blocks[1].Info != "py" || blocks[1].Code != "b()\n" {
		t.Errorf("second block = %+v", blocks[1])
	}

	if limited := codeBlocks([]byte(input), 1); len(limited) != 1 {
		t.Errorf("expected limit to stop after 1 block, got %d", len(limited))
	}
}
