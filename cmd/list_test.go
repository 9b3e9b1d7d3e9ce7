package cmd

import "testing"

func TestMatchesWildcard(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		pattern  string
		expected bool
	}{
		{
			name:     "empty pattern matches any name",
			input:    "payments-sg",
			pattern:  "",
			expected: true,
		},
		{
			name:     "exact match",
			input:    "payments-sg",
			pattern:  "payments-sg",
			expected: true,
		},
		{
			name:     "exact match fails on different name",
			input:    "payments-sg",
			pattern:  "billing-sg",
			expected: false,
		},
		{
			name:     "prefix wildcard matches",
			input:    "payments-sg",
			pattern:  "payments-*",
			expected: true,
		},
		{
			name:     "prefix wildcard fails",
			input:    "billing-sg",
			pattern:  "payments-*",
			expected: false,
		},
		{
			name:     "suffix wildcard matches",
			input:    "payments-sg",
			pattern:  "*-sg",
			expected: true,
		},
		{
			name:     "suffix wildcard fails",
			input:    "payments-su-1",
			pattern:  "*-sg",
			expected: false,
		},
		{
			name:     "contains wildcard matches",
			input:    "payments-sg",
			pattern:  "*payments*",
			expected: true,
		},
		{
			name:     "contains wildcard fails",
			input:    "billing-sg",
			pattern:  "*payments*",
			expected: false,
		},
		{
			name:     "question mark matches single character",
			input:    "su1",
			pattern:  "su?",
			expected: true,
		},
		{
			name:     "question mark fails on multiple characters",
			input:    "su12",
			pattern:  "su?",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := matchesWildcard(tt.input, tt.pattern)
			if result != tt.expected {
				t.Errorf("matchesWildcard(%q, %q) = %v, expected %v",
					tt.input, tt.pattern, result, tt.expected)
			}
		})
	}
}

func TestGetResourceTypesKnownKinds(t *testing.T) {
	expected := map[string]string{
		"sg":  "servicegroups",
		"su":  "serviceunits",
		"si":  "serviceinstances",
		"dep": "dependencyedges",
	}

	for kind, dir := range expected {
		if getResourceTypes[kind] != dir {
			t.Errorf("getResourceTypes[%q] = %q, expected %q", kind, getResourceTypes[kind], dir)
		}
	}
}
