package main

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	lambdasdk "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
)

const (
	// WarmupSource identifies scheduled warmup events.
	WarmupSource = "warmup"

	// WarmupDelay keeps this instance busy long enough for the self-invoked
	// ones to land on separate instances.
	WarmupDelay = 75 * time.Millisecond
)

type WarmupEvent struct {
	Source      string `json:"source"`
	Concurrency int    `json:"concurrency"`
}

type WarmupResponse struct {
	Status          string `json:"status"`
	InstancesWarmed int    `json:"instancesWarmed"`
}

// invoker is the part of the Lambda client warmup needs.
type invoker interface {
	Invoke(ctx context.Context, params *lambdasdk.InvokeInput, optFns ...func(*lambdasdk.Options)) (*lambdasdk.InvokeOutput, error)
}

// newInvoker is replaced in tests.
var newInvoker = func(ctx context.Context) (invoker, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	return lambdasdk.NewFromConfig(cfg), nil
}

// IsWarmupEvent reports whether event is a warmup ping rather than a
// conversion request.
func IsWarmupEvent(event json.RawMessage) (*WarmupEvent, bool) {
	var w WarmupEvent
	if err := json.Unmarshal(event, &w); err != nil {
		return nil, false
	}
	if w.Source != WarmupSource {
		return nil, false
	}
	if w.Concurrency < 0 {
		w.Concurrency = 0
	}
	return &w, true
}

// HandleWarmup answers a warmup event and, when Concurrency > 0,
// asynchronously invokes this function that many more times.
func HandleWarmup(ctx context.Context, warmup *WarmupEvent) (interface{}, error) {
	instancesWarmed := 1

	if warmup.Concurrency > 0 {
		if err := selfInvoke(ctx, warmup.Concurrency); err == nil {
			instancesWarmed += warmup.Concurrency
		}
	}

	time.Sleep(WarmupDelay)

	return map[string]interface{}{
		"statusCode": 200,
		"body": WarmupResponse{
			Status:          "warm",
			InstancesWarmed: instancesWarmed,
		},
	}, nil
}

func selfInvoke(ctx context.Context, count int) error {
	client, err := newInvoker(ctx)
	if err != nil {
		return err
	}

	// Children get Concurrency 0 so they do not fan out again.
	payload, err := json.Marshal(WarmupEvent{Source: WarmupSource})
	if err != nil {
		return err
	}
	functionName := os.Getenv("AWS_LAMBDA_FUNCTION_NAME")

	var (
		wg        sync.WaitGroup
		errMu     sync.Mutex
		invokeErr error
	)
	for i := 0; i < count; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := client.Invoke(ctx, &lambdasdk.InvokeInput{
				FunctionName:   aws.String(functionName),
				InvocationType: types.InvocationTypeEvent,
				Payload:        payload,
			})
			if err != nil {
				errMu.Lock()
				if invokeErr == nil {
					invokeErr = err
				}
				errMu.Unlock()
			}
		}()
	}

	wg.Wait()
	return invokeErr
}
