// Package prompts holds the prompt templates used for fact extraction,
// keyword extraction, and answer synthesis. Each builder returns a system
// prompt and a user prompt for one LLM call.
package prompts

import "fmt"

// ExtractFacts asks for subject/relation/object facts as strict JSON.
// Sources and targets are lists so a single fact can connect several nodes.
func ExtractFacts(text string) (system, user string) {
	system = `You are a helpful assistant that extracts factual relationships from text.
Respond with a JSON array only, no prose. Each element has this shape:
{"sources": ["..."], "relation": "...", "targets": ["..."]}
Use short noun phrases for sources and targets and a short verb phrase for the relation.
Extract every distinct factual relationship; do not invent facts that are not stated.`
	user = fmt.Sprintf("Extract the factual relationships from the following text:\n\n%s", text)
	return system, user
}

// ExtractKeywords asks for the key entities and concepts of a question.
func ExtractKeywords(query string) (system, user string) {
	system = `You are a helpful assistant that extracts the key entities and concepts from a question.
Respond with a JSON array of strings only, no prose. List the most specific terms first.`
	user = fmt.Sprintf("Extract the key entities and concepts from this question:\n\n%s", query)
	return system, user
}

// Answer asks for an answer grounded in the supplied evidence context.
func Answer(query, context string) (system, user string) {
	system = `You are a helpful assistant that answers questions using the provided evidence.
Base the answer only on the evidence. If the evidence is insufficient, say so.`
	user = fmt.Sprintf("Evidence:\n%s\n\nQuestion: %s", context, query)
	return system, user
}
