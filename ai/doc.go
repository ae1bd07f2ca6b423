// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package ai defines the embedding provider abstraction used by the
// ingestion pipeline and search.
//
// The package exposes two interfaces: Embedder, which converts text into
// vector representations, and AIProvider, which bundles an Embedder with
// lifecycle management. Concrete implementations live in subpackages:
//
//   - ai/openai: production provider targeting any OpenAI-compatible
//     embedding endpoint (Ollama, LocalAI, vLLM, OpenAI itself)
//   - ai/mock: deterministic in-process provider for tests
//
// Providers are configured through ai.Config with functional options:
//
//	cfg := ai.NewConfig(
//	    ai.WithEmbeddingHost("http://localhost:11434"),
//	    ai.WithEmbeddingModel("embeddinggemma"),
//	)
//	provider, err := openai.NewProvider(cfg)
package ai
