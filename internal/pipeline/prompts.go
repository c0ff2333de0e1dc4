// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"text/template"
)

// clarifyPromptTmpl asks the model to restate the question and plan the
// research before any searching happens.
var clarifyPromptTmpl = template.Must(template.New("clarify").Parse(`You are a research planning assistant. Restate the research question and propose a plan for answering it.

Respond with exactly two parts and nothing else:
1. A one- or two-sentence restatement of the question's scope.
2. A short ordered research plan: two to five numbered steps or sub-questions.

Research question:
{{.Query}}
`))

// factCheckPromptTmpl asks the model to critique a draft. The four fixed
// sections give the formatter a predictable structure to reconcile against.
var factCheckPromptTmpl = template.Must(template.New("factcheck").Parse(`You are a fact-checking reviewer. Critique the draft answer below against the original question. Do not rewrite the draft; only report issues.

Respond with exactly these four sections:

Uncorroborated claims:
List every factual sentence that has no citation and does not carry a "(from prior research log)" marker, or whose citation does not support it. Write "None." if there are none.

Potential bias:
List sentences with loaded or one-sided language. Write "None." if there are none.

Weak or unreliable sources:
List citations to sources that are low-quality, promotional, or unrelated to the claim. Write "None." if there are none.

Assessment:
One sentence confirming the remainder of the draft is adequately supported.

Original question:
{{.Query}}

Draft answer:
{{.Draft}}
`))

// formatPromptTmpl asks the model to reconcile the draft with the critique
// into the final report.
var formatPromptTmpl = template.Must(template.New("format").Parse(`You are an editor producing a final research report. Apply the fact-check feedback to the draft:

- Keep the citation on every sentence you keep from the draft.
- Remove sentences flagged as uncorroborated, or hedge them so they no longer assert facts.
- Soften sentences flagged as biased using attribution language ("according to...", "the source states...").
- Drop sentences that rely solely on a source flagged as weak, unless another cited source corroborates the same claim; in that case re-cite to the stronger source.

Output the final report text only. Do not describe what you changed.

Original question:
{{.Query}}

Draft answer:
{{.Draft}}

Fact-check feedback:
{{.Feedback}}
`))

// renderPrompt executes a prompt template with its data.
func renderPrompt(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
