// Package openai implements generation.Completer with the chat completions
// API of OpenAI or any compatible provider (OpenRouter, Groq, a local
// server) through github.com/sashabaranov/go-openai.
package openai
