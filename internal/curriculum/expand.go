package curriculum

import "strings"

// ExpandContent builds a full lesson body from a title and a short blurb.
// The section headers are the ones quizgen strips and parses.
func ExpandContent(title, short string) string {
	sections := []string{
		"Overview:\n" + short,
		"Key Concepts:\n" +
			"- " + title + " — core idea and definitions.\n" +
			"- Related subtopics and vocabulary that students must learn.\n" +
			"- Important formulas or frameworks (where applicable).",
		"Detailed Explanation:\n" + short + " expands into a longer explanation. " +
			"This section walks through the core theory in depth, step by step. " +
			"Provide definitions, worked examples, and connections to prerequisite knowledge. " +
			"Use concrete examples and visual descriptions when helpful.",
		"Worked Examples & Practice:\n" +
			"1) Example problem with setup and step-by-step solution.\n" +
			"2) A second example that highlights a common pitfall.\n" +
			"3) Quick practice questions to try and answers or hints.",
		"Applications & Labs:\n" +
			"Describe real-world applications or simple lab/activities students can do to observe the concepts. " +
			"Explain expected results and how to record observations.",
		"Summary & Next Steps:\n" +
			"Summarize the most important points. Provide further reading, short practice problems, " +
			"and a preview of what to expect next.",
	}
	return strings.Join(sections, "\n\n")
}
