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
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var checkTimeout time.Duration

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the configured provider is usable",
	Long: `Check that the configured provider has the settings it needs and, where the
provider supports it, that its endpoint answers. No conversion is requested.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		_, svc, err := buildBridge(cfg, log)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), checkTimeout)
		defer cancel()

		if err := svc.IsAvailable(ctx); err != nil {
			return fmt.Errorf("%s: %w", svc.Name(), err)
		}

		model := ""
		if m, ok := svc.(interface{ Model() string }); ok {
			model = " (" + m.Model() + ")"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s%s: ok\n", svc.Name(), model)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().DurationVar(&checkTimeout, "check-timeout", 10*time.Second, "How long to wait for the provider")
}
