package ai

import (
	"fmt"
	"strings"
)

// SynthesisSystemPrompt frames every answer-synthesis request. Answers must
// stay grounded in the retrieved excerpts and use bracketed citation markers
// that line up with the citation list returned alongside the answer.
const SynthesisSystemPrompt = `You are an expert in aging biology and gerontology.
Answer questions based on the provided scientific literature excerpts.
Always cite sources using [number] notation.
Be precise and scientific in your language.
If the context doesn't contain enough information, say so.`

// BuildSynthesisPrompt assembles the user prompt for answer synthesis from
// the query, the numbered context block, and the numbered citation list.
func BuildSynthesisPrompt(query, context, citations string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n\n", query)
	fmt.Fprintf(&b, "Context from scientific literature:\n%s\n\n", context)
	fmt.Fprintf(&b, "Available citations:\n%s\n\n", citations)
	b.WriteString("Please provide a comprehensive answer based on the context above.\n")
	b.WriteString("Cite sources using [number] notation (e.g., [1], [2]).\n")
	b.WriteString("Focus on aging-related mechanisms and proteins when relevant.")
	return b.String()
}

// PredictFunctionSystemPrompt frames structured protein-function prediction.
const PredictFunctionSystemPrompt = `You are an expert in protein biochemistry and aging biology.
Given a protein and supporting literature excerpts, predict its biological function
and its role in aging. Ground every claim in the provided context where possible
and mark speculation clearly.`

// BuildPredictFunctionPrompt assembles the user prompt for protein-function
// prediction. The context block may be empty when no literature was retrieved
// for the protein.
func BuildPredictFunctionPrompt(symbol, name, context string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Predict the biological function and role in aging for the protein %s", symbol)
	if name != "" {
		fmt.Fprintf(&b, " (%s)", name)
	}
	b.WriteString(".\n")
	if context != "" {
		fmt.Fprintf(&b, "\nContext from scientific literature:\n%s\n", context)
	}
	return b.String()
}
