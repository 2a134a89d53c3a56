// Package gemini implements generation.Completer with Google's Gemini API
// through google.golang.org/genai.
package gemini
