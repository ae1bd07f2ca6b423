// Package openai provides AI services backed by OpenAI-compatible APIs.
//
// The provider targets any endpoint speaking the OpenAI embeddings wire
// format: Ollama, LocalAI, vLLM, or OpenAI itself. Authentication uses a
// placeholder token suitable for local services; point EmbeddingHost at a
// real OpenAI endpoint only when the environment supplies credentials.
package openai
