/*
Package llm relays therapy sessions to an Azure OpenAI chat deployment.

# Architecture Overview

The package is split along three responsibilities:

1. Upstream client (client.go, azure.go)
  - Completer is the provider abstraction: a streaming call and a
    non-streaming call
  - AzureClient implements it with github.com/sashabaranov/go-openai
    configured for Azure (endpoint, deployment, API version)
  - NewAzureClient returns ErrNotConfigured when credential, endpoint or
    deployment is missing; callers keep a nil Completer and fail fast

2. Relay (service.go)
  - Service.Stream renders the prompt template, opens a streaming completion
    (temperature 0.8, 1000 tokens, 30 second bound) and forwards every
    non-empty chunk in arrival order over a channel
  - A stream without any text produces EmptyResponseMessage
  - Service.Probe issues one short non-streaming completion

3. Diagnostics (diagnose.go)
  - Classify sorts upstream failures into connection, authentication,
    deployment-not-found, rate-limit, timeout or unclassified
  - Diagnosis.Lines renders the user-facing text written into the stream

# Request Flow

 1. The HTTP handler validates the submission and calls Service.Stream
 2. A goroutine opens the upstream stream and sends text to the channel
 3. The handler writes and flushes each value as it arrives
 4. On an upstream error the goroutine writes the diagnostic lines and
    closes the channel; the HTTP status stays 200
 5. When the request context is cancelled the goroutine stops, closes the
    upstream stream and writes nothing more

# Error Classification

Rules are checked in order and the first case-insensitive substring match
wins:

  - "connection error"
  - "401", "authentication"
  - "404", "not found"
  - "429", "rate limit"
  - "timeout"

The matched text is the error message plus tags derived from the error type
(HTTP status codes from the SDK, "timeout" for deadlines, "Connection error"
for dial, DNS and certificate failures).
*/
package llm
