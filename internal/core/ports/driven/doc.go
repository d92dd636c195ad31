// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Extractor: Pulls page text out of a manual file (PDF, DOCX, ...)
//   - VectorIndex: Chunk storage and similarity search
//   - EmbeddingService: Generates vector embeddings
//   - LLMService: Streamed answer generation
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - TranscriptStore: Conversation logging. Without it, turns are not logged.
//   - PromptStore: Custom system prompts. Without it, the embedded default is used.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or extractor package
package driven
