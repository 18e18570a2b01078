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
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/valpere/codeconv/internal/bridge"
	"github.com/valpere/codeconv/internal/completion"
	"github.com/valpere/codeconv/internal/config"
	"github.com/valpere/codeconv/internal/detector"
	"github.com/valpere/codeconv/internal/validator"
)

// loadConfig reads the merged settings and builds a text logger on the
// command's stderr.
func loadConfig(cmd *cobra.Command) (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, nil, err
	}
	return cfg, cfg.Logger(cmd.ErrOrStderr(), false), nil
}

// buildBridge constructs the configured completion service and a bridge
// over it with source detection and target checking enabled.
func buildBridge(cfg *config.Config, log logrus.FieldLogger) (*bridge.Bridge, completion.Service, error) {
	svc, err := completion.NewService(cfg.ServiceConfig)
	if err != nil {
		return nil, nil, err
	}

	src, err := cfg.SourceLanguage()
	if err != nil {
		return nil, nil, err
	}
	tgt, err := cfg.TargetLanguage()
	if err != nil {
		return nil, nil, err
	}

	b := bridge.New(svc,
		bridge.WithLogger(log),
		bridge.WithLanguages(src, tgt),
		bridge.WithDetector(detector.New()),
		bridge.WithChecker(validator.New()),
	)
	return b, svc, nil
}
