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

// repairJSON attempts to fix common JSON formatting issues from LLM responses:
// keys missing their opening quote and trailing commas before a closing
// bracket or brace.
func repairJSON(s string) string {
	return dropTrailingCommas(quoteKeys(s))
}

// quoteKeys adds a missing opening quote before object keys.
// Example: `{terms": [...]}` -> `{"terms": [...]}`
func quoteKeys(s string) string {
	result := []rune(s)
	fixed := make([]rune, 0, len(result)+16)

	i := 0
	for i < len(result) {
		ch := result[i]
		if ch != '{' && ch != ',' {
			fixed = append(fixed, ch)
			i++
			continue
		}

		fixed = append(fixed, ch)
		i++

		for i < len(result) && (result[i] == ' ' || result[i] == '\n' || result[i] == '\t') {
			fixed = append(fixed, result[i])
			i++
		}

		if i >= len(result) || !isLetter(result[i]) {
			continue
		}

		keyStart := i
		for i < len(result) && (isLetter(result[i]) || result[i] == '_') {
			i++
		}

		// A bare word followed by `":` is a key missing its opening quote
		if i+1 < len(result) && result[i] == '"' && result[i+1] == ':' {
			fixed = append(fixed, '"')
		}
		fixed = append(fixed, result[keyStart:i]...)
	}

	return string(fixed)
}

// dropTrailingCommas removes commas that directly precede ] or }, ignoring
// whitespace. Commas inside strings are kept.
func dropTrailingCommas(s string) string {
	runes := []rune(s)
	out := make([]rune, 0, len(runes))
	inString := false
	escaped := false

	for i, r := range runes {
		if inString {
			out = append(out, r)
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}
		if r == '"' {
			inString = true
		}
		if r == ',' && closesNext(runes[i+1:]) {
			continue
		}
		out = append(out, r)
	}
	return string(out)
}

func closesNext(rest []rune) bool {
	for _, r := range rest {
		switch r {
		case ' ', '\n', '\t', '\r':
			continue
		case ']', '}':
			return true
		default:
			return false
		}
	}
	return false
}
