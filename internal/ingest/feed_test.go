package ingest

import "testing"

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text untouched", "Port strike in Genoa", "Port strike in Genoa"},
		{"tags removed", "<p>Port <b>strike</b> in Genoa</p>", "Port strike in Genoa"},
		{"entities decoded", "Tariffs &amp; sanctions", "Tariffs & sanctions"},
		{"whitespace collapsed", "Port\n\n  strike", "Port strike"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripHTML(tt.in); got != tt.want {
				t.Errorf("stripHTML(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSourceNameFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://feeds.bbci.co.uk/news/world/rss.xml", "Co"},
		{"https://gcaptain.com/feed/", "Gcaptain"},
		{"https://www.freightwaves.com/news/feed", "Freightwaves"},
	}
	for _, tt := range tests {
		if got := sourceNameFromURL(tt.url); got != tt.want {
			t.Errorf("sourceNameFromURL(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestFeedSourceNameDefaults(t *testing.T) {
	named := NewFeedSource("https://gcaptain.com/feed/", "gCaptain", "", 20)
	if named.Name() != "gCaptain" {
		t.Errorf("Name = %q, want configured name", named.Name())
	}
	derived := NewFeedSource("https://gcaptain.com/feed/", "", "", 20)
	if derived.Name() != "Gcaptain" {
		t.Errorf("Name = %q, want Gcaptain derived from host", derived.Name())
	}
}
