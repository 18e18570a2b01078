// Package bridge connects an editable input buffer to a completion service.
//
// A Bridge owns two buffers. Convert packages the input buffer and the
// selected languages into a request and makes one call to the completion
// service. It then writes the reply, or a failure message, back. While the
// call is outstanding the bridge reports itself busy and refuses to start
// another.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/valpere/codeconv/internal"
	"github.com/valpere/codeconv/internal/buffer"
	"github.com/valpere/codeconv/internal/completion"
	"github.com/valpere/codeconv/internal/language"
)

var (
	// ErrBusy means a conversion is already in flight. No request was made
	// and neither buffer changed.
	ErrBusy = errors.New("conversion already in progress")

	// ErrCompletionFailed covers every failure of the outbound call:
	// network, authorization, bad status, malformed or empty reply.
	ErrCompletionFailed = errors.New("external call failed")

	errEmptyReply = errors.New("empty reply from completion service")
)

// State is a consistent snapshot of everything a front-end shows.
type State struct {
	SourceText     string            `json:"source_text"`
	SourceLanguage language.Language `json:"source_language,omitempty"`
	TargetLanguage language.Language `json:"target_language"`
	Output         string            `json:"output"`
	ErrorMessage   string            `json:"error,omitempty"`
	Busy           bool              `json:"busy"`
	InputDisplay   buffer.Display    `json:"input_display"`
	OutputDisplay  buffer.Display    `json:"output_display"`
}

// Detector guesses the language of a snippet.
type Detector interface {
	Detect(code string) (language.Language, bool)
}

// Checker reports converted code that does not look like the target.
type Checker interface {
	Check(code string, target language.Language) error
}

type Option func(*Bridge)

func WithLogger(log logrus.FieldLogger) Option {
	return func(b *Bridge) { b.log = log }
}

// WithDetector fills in the source label of a request whose source is
// unknown. The guess goes into the outgoing request only; the selection
// stays unknown.
func WithDetector(d Detector) Option {
	return func(b *Bridge) { b.det = d }
}

// WithChecker runs c over every successful reply. A complaint is logged
// and the reply is kept.
func WithChecker(c Checker) Option {
	return func(b *Bridge) { b.check = c }
}

// WithLanguages sets the initial source and target selection.
func WithLanguages(source, target language.Language) Option {
	return func(b *Bridge) {
		b.sourceLang = source
		b.targetLang = target
	}
}

type Bridge struct {
	svc   completion.Service
	log   logrus.FieldLogger
	det   Detector
	check Checker

	busy atomic.Bool

	mu         sync.Mutex
	input      *buffer.Buffer
	output     *buffer.Buffer
	sourceLang language.Language
	targetLang language.Language
	errMsg     string
}

// New returns an idle bridge with JavaScript → Python selected.
func New(svc completion.Service, opts ...Option) *Bridge {
	b := &Bridge{
		svc:        svc,
		log:        logrus.StandardLogger(),
		sourceLang: language.DefaultSource,
		targetLang: language.DefaultTarget,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.input = buffer.New(buffer.WithMode(buffer.ModeFor(b.sourceLang)))
	b.output = buffer.New(buffer.ReadOnly(), buffer.WithMode(buffer.ModeFor(b.targetLang)))
	return b
}

// Input is the user-editable source buffer.
func (b *Bridge) Input() *buffer.Buffer {
	return b.input
}

// Output is the result buffer. It is read-only; SetText on it fails.
func (b *Bridge) Output() *buffer.Buffer {
	return b.output
}

func (b *Bridge) SetSourceText(text string) {
	b.input.Load(text)
}

// SetSourceLanguage selects the source label. The zero Language means
// unknown and is omitted from the prompt.
func (b *Bridge) SetSourceLanguage(l language.Language) {
	b.mu.Lock()
	b.sourceLang = l
	b.mu.Unlock()
}

func (b *Bridge) SetTargetLanguage(l language.Language) {
	b.mu.Lock()
	b.targetLang = l
	b.mu.Unlock()
}

func (b *Bridge) ErrorMessage() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.errMsg
}

func (b *Bridge) Busy() bool {
	return b.busy.Load()
}

func (b *Bridge) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return State{
		SourceText:     b.input.Text(),
		SourceLanguage: b.sourceLang,
		TargetLanguage: b.targetLang,
		Output:         b.output.Text(),
		ErrorMessage:   b.errMsg,
		Busy:           b.busy.Load(),
		InputDisplay:   b.input.Display(),
		OutputDisplay:  b.output.Display(),
	}
}

// Convert sends the current input to the completion service.
//
// It returns ErrBusy if another conversion is in flight. Otherwise the
// returned result holds exactly one of Text and ErrorMessage, and the buffers
// reflect it: on failure the output is cleared and the error wraps
// ErrCompletionFailed.
func (b *Bridge) Convert(ctx context.Context) (internal.ConversionResult, error) {
	if !b.busy.CompareAndSwap(false, true) {
		return internal.ConversionResult{}, ErrBusy
	}
	defer b.busy.Store(false)

	b.mu.Lock()
	req := internal.ConversionRequest{
		SourceText:     b.input.Text(),
		SourceLanguage: b.sourceLang,
		TargetLanguage: b.targetLang,
	}
	b.mu.Unlock()

	return b.run(ctx, req)
}

// ConvertRequest loads req into the input buffer and language selection,
// then converts. When the bridge is busy it returns ErrBusy and leaves the
// input untouched.
func (b *Bridge) ConvertRequest(ctx context.Context, req internal.ConversionRequest) (internal.ConversionResult, error) {
	if !b.busy.CompareAndSwap(false, true) {
		return internal.ConversionResult{}, ErrBusy
	}
	defer b.busy.Store(false)

	b.mu.Lock()
	b.input.Load(req.SourceText)
	b.sourceLang = req.SourceLanguage
	b.targetLang = req.TargetLanguage
	b.mu.Unlock()

	return b.run(ctx, req)
}

func (b *Bridge) run(ctx context.Context, req internal.ConversionRequest) (internal.ConversionResult, error) {
	log := b.log.WithFields(logrus.Fields{
		"request_id": uuid.NewString(),
		"service":    b.svc.Name(),
		"target":     req.TargetLanguage,
		"bytes":      len(req.SourceText),
	})

	if req.SourceLanguage == "" && b.det != nil {
		if l, ok := b.det.Detect(req.SourceText); ok {
			req.SourceLanguage = l
			log = log.WithField("detected", true)
		}
	}
	log = log.WithField("source", req.SourceLanguage)
	log.Debug("conversion started")

	start := time.Now()
	text, err := b.complete(ctx, req)
	log = log.WithField("latency", time.Since(start))

	if err == nil && b.check != nil {
		if cerr := b.check.Check(text, req.TargetLanguage); cerr != nil {
			log.WithError(cerr).Warn("converted code may not match target language")
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err != nil {
		err = fmt.Errorf("%w: %w", ErrCompletionFailed, err)
		b.output.Load("")
		b.errMsg = err.Error()
		log.WithError(err).Warn("conversion failed")
		return internal.ConversionResult{ErrorMessage: b.errMsg}, err
	}

	b.output.Load(text)
	b.errMsg = ""
	log.WithField("output_bytes", len(text)).Info("conversion finished")
	return internal.ConversionResult{Text: text}, nil
}

// complete performs the single outbound call and folds every way it can go
// wrong into one error.
func (b *Bridge) complete(ctx context.Context, req internal.ConversionRequest) (string, error) {
	res, err := b.svc.Complete(ctx, req)
	switch {
	case err != nil:
		msg := err.Error()
		if res != nil && res.Error != "" {
			msg = res.Error
		}
		return "", &callError{msg: msg, cause: err}
	case res == nil:
		return "", errEmptyReply
	case res.Error != "":
		return "", errors.New(res.Error)
	case res.Text == "":
		return "", errEmptyReply
	}
	return res.Text, nil
}

// callError shows the service's own description of a failure while keeping
// the underlying error reachable through errors.Is/As.
type callError struct {
	msg   string
	cause error
}

func (e *callError) Error() string { return e.msg }

func (e *callError) Unwrap() error { return e.cause }
