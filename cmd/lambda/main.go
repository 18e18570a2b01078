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
// Package main is the entry point for the code conversion Lambda function.
package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/valpere/codeconv/internal/bridge"
	"github.com/valpere/codeconv/internal/completion"
	"github.com/valpere/codeconv/internal/config"
	"github.com/valpere/codeconv/internal/detector"
	"github.com/valpere/codeconv/internal/handler"
	"github.com/valpere/codeconv/internal/validator"
)

func main() {
	log := config.NewLogger(os.Getenv(config.EnvPrefix+"_LOG_LEVEL"), os.Stderr, true)

	h, err := newHandler(log)
	if err != nil {
		log.WithError(err).Fatal("failed to configure handler")
	}

	lambda.Start(func(ctx context.Context, event json.RawMessage) (interface{}, error) {
		return handleRequest(ctx, h, event)
	})
}

// newHandler reads configuration from CODECONV_* environment variables.
// log is used until the configured level is known.
func newHandler(log *logrus.Logger) (*handler.Handler, error) {
	v := viper.New()
	if err := config.Setup(v, ""); err != nil {
		return nil, err
	}
	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}

	svc, err := completion.NewService(cfg.ServiceConfig)
	if err != nil {
		return nil, err
	}

	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}

	return handler.New(svc, log,
		bridge.WithDetector(detector.New()),
		bridge.WithChecker(validator.New()),
	), nil
}

func handleRequest(ctx context.Context, h *handler.Handler, event json.RawMessage) (interface{}, error) {
	// Warmup detection must come before any other processing.
	if warmup, ok := IsWarmupEvent(event); ok {
		return HandleWarmup(ctx, warmup)
	}

	var req handler.Request
	if err := json.Unmarshal(event, &req); err != nil {
		return nil, err
	}

	return h.Handle(ctx, req)
}
