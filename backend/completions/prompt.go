// Package completions runs one chat exchange against a provider and
// records it once the exchange is over.
package completions

import "strings"

const systemPromptTemplate = `You are an useful conversational assistant. You answers must be as shorter as you can to avoid too much time while generating answers. You must keep in mind that your answer will be spoken by another AI model. Keep it simple and useful.

These are previous message between you and the user:
---
{context}
---

Continue the conversation naturally`

// SystemPrompt embeds the client supplied context verbatim.
func SystemPrompt(context string) string {
	return strings.Replace(systemPromptTemplate, "{context}", context, 1)
}
