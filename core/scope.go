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

package core

import (
	"strings"
	"time"
)

// DimensionNames lists the scope dimensions in their fixed order.
var DimensionNames = [5]string{"team", "product", "region", "process", "role"}

// Scope narrows where an alias, definition or relationship applies.
// An empty dimension means "applies to all".
type Scope struct {
	Team    string `json:"team,omitempty" yaml:"team,omitempty"`
	Product string `json:"product,omitempty" yaml:"product,omitempty"`
	Region  string `json:"region,omitempty" yaml:"region,omitempty"`
	Process string `json:"process,omitempty" yaml:"process,omitempty"`
	Role    string `json:"role,omitempty" yaml:"role,omitempty"`
}

// Dimensions returns the scope values in DimensionNames order.
func (s Scope) Dimensions() [5]string {
	return [5]string{s.Team, s.Product, s.Region, s.Process, s.Role}
}

// IsZero reports whether no dimension is set.
func (s Scope) IsZero() bool {
	return s == Scope{}
}

// Compatible reports whether an entity qualified by s may be used under the
// requested context. A dimension conflicts only when both sides set it and the
// values differ.
func (s Scope) Compatible(context Scope) bool {
	own, want := s.Dimensions(), context.Dimensions()
	for i := range own {
		if own[i] != "" && want[i] != "" && own[i] != want[i] {
			return false
		}
	}
	return true
}

// Contains reports whether every dimension set in filter has the same value in s.
func (s Scope) Contains(filter Scope) bool {
	own, want := s.Dimensions(), filter.Dimensions()
	for i := range want {
		if want[i] != "" && own[i] != want[i] {
			return false
		}
	}
	return true
}

// Key is a stable textual form used inside content IDs.
func (s Scope) Key() string {
	d := s.Dimensions()
	return strings.Join(d[:], "|")
}

// String renders the set dimensions as "team=x; region=y", or "(none)".
func (s Scope) String() string {
	d := s.Dimensions()
	parts := make([]string, 0, len(d))
	for i, v := range d {
		if v != "" {
			parts = append(parts, DimensionNames[i]+"="+v)
		}
	}
	if len(parts) == 0 {
		return "(none)"
	}
	return strings.Join(parts, "; ")
}

// Window is a temporal validity interval. A zero ValidFrom means "since
// always" and a zero ValidTo means open ended.
type Window struct {
	ValidFrom time.Time
	ValidTo   time.Time
}

// ActiveAt reports whether ValidFrom <= t < ValidTo.
func (w Window) ActiveAt(t time.Time) bool {
	if !w.ValidFrom.IsZero() && w.ValidFrom.After(t) {
		return false
	}
	if !w.ValidTo.IsZero() && !w.ValidTo.After(t) {
		return false
	}
	return true
}

// Applies combines the scope and temporal checks shared by aliases,
// definitions and relationships.
func Applies(scope Scope, window Window, context Scope, at time.Time) bool {
	return scope.Compatible(context) && window.ActiveAt(at)
}
