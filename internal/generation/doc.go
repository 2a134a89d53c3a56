// Package generation defines how AI-drafted learning content is produced.
//
// A Generator turns a term the learner typed into a CardDraft (translation,
// CEFR level, kind and example) and a grammar topic into a RuleDraft. The
// package holds the provider-independent parts: prompts, response parsing,
// error classification, retries and rate limiting. Providers in
// internal/platform (Gemini, OpenAI-compatible) only implement Completer.
package generation
