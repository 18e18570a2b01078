// Package handler provides the Lambda handler for code conversion.
package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/valpere/codeconv/internal"
	"github.com/valpere/codeconv/internal/bridge"
	"github.com/valpere/codeconv/internal/completion"
	"github.com/valpere/codeconv/internal/language"
)

// Request is the input to the converter.
type Request struct {
	SourceText     string `json:"sourceText"`
	SourceLanguage string `json:"sourceLanguage,omitempty"`
	TargetLanguage string `json:"targetLanguage"`
}

// Response is the output from the converter. Exactly one of Text and Error
// is set.
type Response struct {
	Text           string `json:"text,omitempty"`
	SourceLanguage string `json:"sourceLanguage,omitempty"`
	TargetLanguage string `json:"targetLanguage,omitempty"`
	Busy           bool   `json:"busy,omitempty"`
	Error          string `json:"error,omitempty"`
}

// Handler owns one bridge. A Lambda instance handles one event at a time,
// so the busy flag only trips when the runtime is driven concurrently.
type Handler struct {
	bridge *bridge.Bridge
}

func New(svc completion.Service, log logrus.FieldLogger, opts ...bridge.Option) *Handler {
	opts = append([]bridge.Option{bridge.WithLogger(log)}, opts...)
	return &Handler{bridge: bridge.New(svc, opts...)}
}

// Handle converts one request. Validation and conversion failures are
// reported in Response.Error; the returned error is always nil so the
// runtime does not retry the event.
func (h *Handler) Handle(ctx context.Context, req Request) (*Response, error) {
	convReq, err := validateRequest(req)
	if err != nil {
		return &Response{Error: err.Error()}, nil
	}

	res, err := h.bridge.ConvertRequest(ctx, convReq)
	if errors.Is(err, bridge.ErrBusy) {
		return &Response{Busy: true, Error: err.Error()}, nil
	}
	if err != nil {
		return &Response{Error: res.ErrorMessage}, nil
	}

	return &Response{
		Text:           res.Text,
		SourceLanguage: convReq.SourceLanguage.String(),
		TargetLanguage: convReq.TargetLanguage.String(),
	}, nil
}

// validateRequest checks the request is valid and resolves its labels.
func validateRequest(req Request) (internal.ConversionRequest, error) {
	if strings.TrimSpace(req.TargetLanguage) == "" {
		return internal.ConversionRequest{}, fmt.Errorf("targetLanguage is required")
	}
	tgt, err := language.Parse(req.TargetLanguage)
	if err != nil {
		return internal.ConversionRequest{}, fmt.Errorf("targetLanguage: %w", err)
	}
	src, err := language.ParseOptional(req.SourceLanguage)
	if err != nil {
		return internal.ConversionRequest{}, fmt.Errorf("sourceLanguage: %w", err)
	}
	return internal.ConversionRequest{
		SourceText:     req.SourceText,
		SourceLanguage: src,
		TargetLanguage: tgt,
	}, nil
}
