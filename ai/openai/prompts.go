// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package openai

import (
	"fmt"

	"github.com/poiesic/termgraph/ai"
)

const classificationResponseSchema = `{
  "type": "object",
  "properties": {
    "terms": {
      "type": "array",
      "maxItems": %d,
      "items": {"type": "string", "maxLength": %d}
    }
  },
  "required": ["terms"],
  "additionalProperties": false
}`

const classificationPromptTemplate = `You find internal company terminology in a user question.

Return ONLY a JSON object matching this schema, with no preamble or explanation:

%s

Rules:
- List up to %d short terms (1-3 words) that look like organization-specific slang,
  code names, status labels or acronyms.
- Copy each term exactly as it appears in the question.
- Do not include common words, names of well known products, or whole sentences.
- If nothing looks like internal terminology, return {"terms": []}.

Example:
Input: "Je to GREEN status pro release gate?"
Output: {"terms": ["GREEN status", "release gate"]}

Example:
Input: "what is the weather in paris"
Output: {"terms": []}`

// buildSystemPrompt creates the system prompt with the response limits embedded.
func buildSystemPrompt() string {
	schema := fmt.Sprintf(classificationResponseSchema, ai.MaxFallbackTerms, ai.MaxTermLength)
	return fmt.Sprintf(classificationPromptTemplate, schema, ai.MaxFallbackTerms)
}
