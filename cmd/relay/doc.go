// Command relay runs the CodeCounselor HTTP service: it accepts code
// snippets, wraps them in the therapist prompt and streams the Azure OpenAI
// reply back as plain text.
//
// # Endpoints
//
//   - GET  /            welcome payload
//   - GET  /health      liveness and whether the upstream is configured
//   - GET  /debug       configuration snapshot with the API key redacted
//   - POST /test-simple one non-streaming upstream request
//   - POST /chat        {"message": "..."} streamed as text/plain
//   - GET  /metrics     Prometheus exposition
//
// Upstream failures on /chat do not change the HTTP status. They are
// classified and written into the stream as a readable diagnostic.
//
// # Environment Variables
//
//   - AZURE_OPENAI_API_KEY, AZURE_OPENAI_ENDPOINT, AZURE_OPENAI_DEPLOYMENT_NAME: upstream credentials (required)
//   - AZURE_OPENAI_API_VERSION: defaults to 2024-02-15-preview
//   - HOST, PORT: listener, defaults to 0.0.0.0:8000
//   - PROMPT_PATH: therapist prompt resource
//   - RELAY_TOKEN_SECRET: enables bearer-token auth on /chat and /test-simple
//   - RATE_LIMIT_PER_MINUTE: per client IP on /chat, 0 disables
//   - ALLOWED_ORIGINS: comma separated CORS origins
//   - LOG_LEVEL, LOG_FORMAT: apex/log level and text or json output
//
// A .env file in the working directory or any parent is loaded first and
// overrides the process environment.
//
// # Flags
//
//	relay -issue-token alice   print a signed access token and exit
//	relay -probe               run the upstream probe once and exit
package main
