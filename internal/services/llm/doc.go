// Package llm provides an OpenRouter chat client for JSON-mode completions.
//
// The meeting analyzer uses it to send a prompt, optionally with an inline
// base64 audio attachment, and receive a JSON object describing the
// transcript, summary, decisions and tasks.
//
// # Retry Behaviour
//
// The client retries on HTTP 408/429/5xx errors, empty completions and network
// timeouts with exponential backoff (base 1s, max 10s, up to 3 attempts by
// default). Retry-After is honoured. Context cancellation aborts retries
// immediately.
//
// DecodeLLMJSON tolerates code fences and prose surrounding the JSON object.
package llm
