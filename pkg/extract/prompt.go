package extract

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are an entity and relationship extraction engine for a personal knowledge graph.
Given a piece of text, extract the real-world entities it mentions and the relationships between them.

Respond with a single JSON object, no prose, in this shape:
{
  "nodes": [{"label": "...", "type": "...", "attributes": {}, "confidence": 0.0, "salience": 0.0}],
  "edges": [{"source": "...", "target": "...", "type": "...", "weight": 1, "confidence": 0.0, "evidence": ["..."]}],
  "insights": ["..."]
}

Rules:
- "type" is a lowercase category such as person, project, topic, place, organization, goal, media, event, skill, interest, belief, habit. Propose a new lowercase category only when none fits.
- "confidence" is how certain you are the entity/relationship is real, in [0,1].
- "salience" is how central the entity is to the text, in [0,1]: defining traits score high, incidental mentions low.
- Edge "source" and "target" must repeat node labels from this response verbatim.
- Edge "type" is a lowercase relation such as works_on, interested_in, knows, likes, dislikes, prefers, avoids, enjoys, believes, doubts.
- "insights" are short free-text observations that do not fit the graph.
- Skip navigation chrome, placeholders, and file paths. Extract nothing rather than guessing.`

// userPrompt renders the extraction request for one piece of text.
func userPrompt(text string, existingContext []string) string {
	var b strings.Builder
	if len(existingContext) > 0 {
		b.WriteString("Entities already known (reuse these labels where they refer to the same thing):\n")
		for _, label := range existingContext {
			fmt.Fprintf(&b, "- %s\n", label)
		}
		b.WriteString("\n")
	}
	b.WriteString("Text:\n")
	b.WriteString(text)
	return b.String()
}
