package scraper

import "testing"

func TestPageURL(t *testing.T) {
	tests := []struct {
		name string
		base string
		page int
		want string
	}{
		{name: "page 1 unchanged", base: "https://x/brand/index.htm", page: 1, want: "https://x/brand/index.htm"},
		{name: "index suffix rewritten", base: "https://x/brand/index.htm", page: 5, want: "https://x/brand/index-5.htm"},
		{name: "trailing slash", base: "https://x/brand/", page: 2, want: "https://x/brand/index-2.htm"},
		{name: "bare path", base: "https://x/brand", page: 2, want: "https://x/brand/index-2.htm"},
		{name: "query preserved", base: "https://x/brand/index.htm?sortorder=1", page: 3, want: "https://x/brand/index-3.htm?sortorder=1"},
		{name: "host only", base: "https://x", page: 2, want: "https://x/index-2.htm"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PageURL(tt.base, tt.page)
			if err != nil {
				t.Fatalf("PageURL(%q, %d): %v", tt.base, tt.page, err)
			}
			if got != tt.want {
				t.Fatalf("PageURL(%q, %d) = %q, want %q", tt.base, tt.page, got, tt.want)
			}
		})
	}
}

func TestPageURLRejectsMalformed(t *testing.T) {
	if _, err := PageURL("https://x/brand/%zz", 2); err == nil {
		t.Fatalf("expected parse error for malformed URL")
	}
}
