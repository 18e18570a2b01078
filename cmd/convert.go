/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var (
	inputFile  string
	outputFile string
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert source code to another language",
	Long: `Convert source code to another programming language with one call to the
configured completion provider.

Input is read from --input, or from stdin when omitted or "-".
Output is written to --output, or to stdout when omitted or "-".

With --source auto (the default) the source language is guessed from the code.
If the guess fails the provider is told only the target language.

Examples:
  codeconv convert -i app.js -t python -o app.py
  echo "print('hi')" | codeconv convert -t javascript
  codeconv convert -i main.rb -s ruby -t java -p ollama -m qwen2.5-coder:7b`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if isFile(inputFile) && inputFile == outputFile {
			return fmt.Errorf("input file and output file cannot be the same")
		}

		cfg, log, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		text, err := readInput(cmd, inputFile)
		if err != nil {
			return err
		}

		b, _, err := buildBridge(cfg, log)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		b.SetSourceText(text)
		res, err := b.Convert(ctx)
		if err != nil {
			return err
		}

		if err := writeOutput(cmd, outputFile, res.Text); err != nil {
			return err
		}

		if isFile(outputFile) {
			st := b.State()
			from := st.SourceLanguage.String()
			if from == "" {
				from = "auto-detected source"
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Successfully converted %s to %s\n", from, st.TargetLanguage)
		}
		return nil
	},
}

func isFile(path string) bool {
	return path != "" && path != "-"
}

func readInput(cmd *cobra.Command, path string) (string, error) {
	if !isFile(path) {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read input file: %w", err)
	}
	return string(data), nil
}

func writeOutput(cmd *cobra.Command, path, text string) error {
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}

	if !isFile(path) {
		_, err := io.WriteString(cmd.OutOrStdout(), text)
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Input file with source code (default stdin)")
	convertCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file for converted code (default stdout)")
}
