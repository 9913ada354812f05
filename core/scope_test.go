package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScope_Compatible(t *testing.T) {
	tests := []struct {
		name    string
		entity  Scope
		context Scope
		want    bool
	}{
		{name: "unscoped entity matches any context", entity: Scope{}, context: Scope{Team: "sales", Region: "eu"}, want: true},
		{name: "scoped entity matches empty context", entity: Scope{Team: "sales"}, context: Scope{}, want: true},
		{name: "same team matches", entity: Scope{Team: "sales"}, context: Scope{Team: "sales"}, want: true},
		{name: "different team excluded", entity: Scope{Team: "sales"}, context: Scope{Team: "support"}, want: false},
		{name: "disjoint dimensions match", entity: Scope{Team: "sales"}, context: Scope{Region: "eu"}, want: true},
		{name: "one conflicting dimension excludes", entity: Scope{Team: "sales", Role: "pm"}, context: Scope{Team: "sales", Role: "eng"}, want: false},
		{name: "process checked", entity: Scope{Process: "release"}, context: Scope{Process: "hiring"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.entity.Compatible(tt.context))
		})
	}
}

func TestScope_Contains(t *testing.T) {
	s := Scope{Team: "sales", Region: "eu"}
	assert.True(t, s.Contains(Scope{}))
	assert.True(t, s.Contains(Scope{Team: "sales"}))
	assert.False(t, s.Contains(Scope{Product: "x"}))
	assert.False(t, Scope{}.Contains(Scope{Team: "sales"}))
}

func TestScope_String(t *testing.T) {
	assert.Equal(t, "(none)", Scope{}.String())
	assert.Equal(t, "team=sales; region=eu", Scope{Team: "sales", Region: "eu"}.String())
}

func TestScope_Key(t *testing.T) {
	assert.NotEqual(t, Scope{Team: "a"}.Key(), Scope{Product: "a"}.Key())
	assert.Equal(t, "||||", Scope{}.Key())
}

func TestWindow_ActiveAt(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	t1 := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		window Window
		at     time.Time
		want   bool
	}{
		{name: "unbounded", window: Window{}, at: t0, want: true},
		{name: "before start", window: Window{ValidFrom: t1}, at: t0, want: false},
		{name: "at start is inclusive", window: Window{ValidFrom: t0}, at: t0, want: true},
		{name: "at end is exclusive", window: Window{ValidFrom: t0, ValidTo: t1}, at: t1, want: false},
		{name: "inside bounded", window: Window{ValidFrom: t0, ValidTo: t1}, at: t0.Add(time.Hour), want: true},
		{name: "expired open start", window: Window{ValidTo: t0}, at: t1, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.window.ActiveAt(tt.at))
		})
	}
}

func TestApplies(t *testing.T) {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	expired := Window{ValidTo: now.Add(-time.Hour)}

	assert.True(t, Applies(Scope{Team: "sales"}, Window{}, Scope{Team: "sales"}, now))
	assert.False(t, Applies(Scope{Team: "sales"}, Window{}, Scope{Team: "ops"}, now))
	assert.False(t, Applies(Scope{}, expired, Scope{}, now))
}
