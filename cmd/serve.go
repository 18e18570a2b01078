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
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/valpere/codeconv/internal/config"
	"github.com/valpere/codeconv/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the converter over a JSON HTTP API",
	Long: `Serve one converter over HTTP. The server holds a single input buffer, output
buffer and language selection, and allows one conversion at a time.

Endpoints:
  GET  /api/languages   supported languages, modes and themes
  GET  /api/state       buffers, selection, error message and busy flag
  PUT  /api/input       set source text and/or language selection
  PUT  /api/display     set mode/theme of the input or output buffer
  POST /api/convert     convert; 409 while busy, 502 when the provider fails`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		b, _, err := buildBridge(cfg, log)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := server.New(b, log, server.WithRateLimit(cfg.RateLimit))
		return srv.ListenAndServe(ctx, cfg.Addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", config.DefaultAddr, "Listen address")
	serveCmd.Flags().Int("rate-limit", 0, "Maximum conversions per minute (0 = unlimited)")
	for key, flag := range map[string]string{"addr": "addr", "rate_limit": "rate-limit"} {
		if err := v.BindPFlag(key, serveCmd.Flags().Lookup(flag)); err != nil {
			panic(err)
		}
	}
}
