package site

import (
	"reflect"
	"testing"
)

func TestBelongs(t *testing.T) {
	s, err := New("www.example.com")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	tests := []struct {
		name    string
		url     string
		want    bool
		wantErr bool
	}{
		{"same host", "https://www.example.com/a/b", true, false},
		{"case-insensitive host", "https://WWW.EXAMPLE.COM/a", true, false},
		{"other host", "https://other.com/a", false, false},
		{"subdomain is not the host", "https://shop.example.com/", false, false},
		{"unparsable", "https://exa mple.com/", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Belongs(tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Belongs(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("Belongs(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestNewRequiresHost(t *testing.T) {
	if _, err := New("  "); err == nil {
		t.Fatal("expected error for blank host")
	}
}

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"trailing slash stripped", "https://www.example.com/a/b/", "https://www.example.com/a/b"},
		{"no path", "https://www.example.com", "https://www.example.com"},
		{"root slash stripped", "https://www.example.com/", "https://www.example.com"},
		{"query dropped", "https://www.example.com/a?x=1", "https://www.example.com/a"},
		{"fragment dropped", "https://www.example.com/a#top", "https://www.example.com/a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Canonicalize(tt.url)
			if err != nil {
				t.Fatalf("Canonicalize(%q) error: %v", tt.url, err)
			}
			if got != tt.want {
				t.Fatalf("Canonicalize(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestSegments(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want []string
	}{
		{"host plus path", "https://www.example.com/cat/prod", []string{"www.example.com", "cat", "prod"}},
		{"host only", "https://www.example.com", []string{"www.example.com"}},
		{"empty segments dropped", "https://www.example.com//a//", []string{"www.example.com", "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Segments(tt.url)
			if err != nil {
				t.Fatalf("Segments(%q) error: %v", tt.url, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Segments(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}
