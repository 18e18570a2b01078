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
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/valpere/codeconv/internal/completion"
	"github.com/valpere/codeconv/internal/config"
	"github.com/valpere/codeconv/internal/language"
)

var version = "0.1.0"

var (
	cfgFile string
	v       = viper.New()
)

var rootCmd = &cobra.Command{
	Use:   "codeconv",
	Short: "Convert source code between programming languages",
	Long: `A CLI application that converts source code from one programming language
to another with a single call to a chat-completion service.

Supported languages: JavaScript, Python, Java, C++, Ruby
Supported providers: openrouter, openai, ollama, gemini

Settings come from flags, CODECONV_* environment variables and
.codeconv.yaml (current directory or $HOME). A .env file is loaded first.

Use "codeconv convert --help" for conversion options.`,
	Version:      version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return config.Setup(v, cfgFile)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "Config file (default .codeconv.yaml in . or $HOME)")

	pf.StringP("provider", "p", completion.DefaultProvider, "Completion provider: openrouter, openai, ollama, gemini")
	pf.String("api-key", "", "Provider API key (default: the provider's own OPENROUTER_, OPENAI_ or GEMINI_API_KEY)")
	pf.StringP("model", "m", "", "Model name (provider default if empty)")
	pf.String("base-url", "", "Provider base URL (provider default if empty)")
	pf.Duration("timeout", 0, "HTTP timeout for the completion call (0 = none)")
	pf.Int("max-tokens", 0, "Maximum tokens in the reply (provider default if 0)")
	pf.Float64("temperature", 0, "Sampling temperature")
	pf.StringP("source", "s", language.Auto, "Source language, or auto to detect")
	pf.StringP("target", "t", string(language.DefaultTarget), "Target language")
	pf.String("log-level", config.DefaultLogLevel, "Log level: debug, info, warn, error")

	for key, flag := range map[string]string{
		"provider":    "provider",
		"api_key":     "api-key",
		"model":       "model",
		"base_url":    "base-url",
		"timeout":     "timeout",
		"max_tokens":  "max-tokens",
		"temperature": "temperature",
		"source":      "source",
		"target":      "target",
		"log_level":   "log-level",
	} {
		if err := v.BindPFlag(key, pf.Lookup(flag)); err != nil {
			panic(err)
		}
	}
}
