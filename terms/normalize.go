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

package terms

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Normalize canonicalizes text into its comparable form: NFKC composition,
// lowercase, any rune other than a letter, number, whitespace, '_', ':' or
// '-' replaced by a space, and whitespace runs collapsed to one space.
func Normalize(text string) string {
	s := norm.NFKC.String(text)
	s = cases.Lower(language.Und).String(s)
	s = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsNumber(r), unicode.IsSpace(r):
			return r
		case r == '_', r == ':', r == '-':
			return r
		}
		return ' '
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// Words returns the normalized words of text.
func Words(text string) []string {
	return strings.Fields(Normalize(text))
}

// NGrams returns every contiguous window of 1 to maxN words, joined by a
// single space, in order of appearance.
func NGrams(words []string, maxN int) []string {
	out := make([]string, 0, len(words)*maxN)
	for i := range words {
		for n := 1; n <= maxN && i+n <= len(words); n++ {
			out = append(out, strings.Join(words[i:i+n], " "))
		}
	}
	return out
}
