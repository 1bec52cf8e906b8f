package domain

import (
	"testing"
)

func row(ts, url, title, deleted string) []string {
	return []string{ts, "ana@example.org", "Ana Pérez", title, url, "desc", "Web", "App", "Primaria", "Matemáticas", "juego, números", "CC BY", deleted}
}

func keys(apps []*Application) []string {
	out := make([]string, 0, len(apps))
	for _, a := range apps {
		out = append(out, a.Key)
	}
	return out
}

func TestNormalizeDeletedAfterSubmission(t *testing.T) {
	rows := [][]string{
		row("1/7/2025 10:00:00", "https://x.example.org", "X", "No"),
		row("2/7/2025 10:00:00", "https://x.example.org", "X", "Sí"),
	}

	got := Normalize(rows)
	if len(got) != 0 {
		t.Fatalf("Normalize() = %v, want empty set", keys(got))
	}
}

func TestNormalizeResubmittedAfterDeletion(t *testing.T) {
	rows := [][]string{
		row("1/7/2025 10:00:00", "https://x.example.org", "X v1", ""),
		row("2/7/2025 10:00:00", "https://x.example.org", "X", "SI"),
		row("3/7/2025 10:00:00", "https://x.example.org", "X v2", ""),
	}

	got := Normalize(rows)
	if len(got) != 1 {
		t.Fatalf("Normalize() returned %d records, want 1", len(got))
	}
	if got[0].Title != "X v2" {
		t.Errorf("surviving title = %q, want %q", got[0].Title, "X v2")
	}
}

func TestNormalizeSameTimestampAsDeletionIsDropped(t *testing.T) {
	rows := [][]string{
		row("2/7/2025 10:00:00", "https://x.example.org", "X", ""),
		row("2/7/2025 10:00:00", "https://x.example.org", "X", "si"),
	}

	if got := Normalize(rows); len(got) != 0 {
		t.Errorf("Normalize() = %v, want empty set (cutoff is strict)", keys(got))
	}
}

func TestNormalizeLastWriteWins(t *testing.T) {
	rows := [][]string{
		row("1/7/2025 10:00:00", "https://a.example.org", "A old", ""),
		row("1/7/2025 11:00:00", "https://b.example.org", "B", ""),
		row("1/7/2025 12:00:00", "https://a.example.org", "A new", ""),
	}

	got := Normalize(rows)
	if len(got) != 2 {
		t.Fatalf("Normalize() returned %d records, want 2", len(got))
	}
	if got[0].Key != "https://a.example.org" || got[0].Title != "A new" {
		t.Errorf("first record = %q/%q, want latest A", got[0].Key, got[0].Title)
	}
	if got[1].Key != "https://b.example.org" {
		t.Errorf("second record = %q, want B", got[1].Key)
	}
}

func TestNormalizeKeysAreUnique(t *testing.T) {
	rows := [][]string{
		row("1/7/2025 10:00:00", "https://a.example.org", "A", ""),
		row("1/7/2025 10:00:00", "https://a.example.org", "A", ""),
		row("1/7/2025 10:00:00", "https://b.example.org", "B", ""),
		row("1/7/2025 10:00:00", "https://a.example.org", "A", ""),
		row("1/7/2025 10:00:00", "https://b.example.org", "B", ""),
	}

	seen := make(map[string]bool)
	for _, app := range Normalize(rows) {
		if seen[app.Key] {
			t.Fatalf("duplicate key %q", app.Key)
		}
		if app.Key != app.URL {
			t.Errorf("key %q differs from url %q", app.Key, app.URL)
		}
		seen[app.Key] = true
	}
	if len(seen) != 2 {
		t.Errorf("got %d distinct keys, want 2", len(seen))
	}
}

func TestNormalizeValidation(t *testing.T) {
	tests := []struct {
		name string
		row  []string
		keep bool
	}{
		{"complete row", row("1/7/2025 10:00:00", "https://ok.example.org", "OK", ""), true},
		{"missing title", row("1/7/2025 10:00:00", "https://ok.example.org", "", ""), false},
		{"relative url", row("1/7/2025 10:00:00", "ok.example.org/app", "OK", ""), false},
		{"malformed url", row("1/7/2025 10:00:00", "http://[::1", "OK", ""), false},
		{"missing url", row("1/7/2025 10:00:00", "", "OK", ""), false},
		{"short row", []string{"1/7/2025", "a@b.c", "A", "T"}, false},
		{"padded cells", []string{" 1/7/2025 ", " a@b.c ", " A ", " T ", " https://pad.example.org "}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize([][]string{tt.row})
			if (len(got) == 1) != tt.keep {
				t.Errorf("Normalize() kept=%v, want %v", len(got) == 1, tt.keep)
			}
		})
	}
}

func TestNormalizeTrimsCells(t *testing.T) {
	got := Normalize([][]string{{" 1/7/2025 ", " a@b.c ", " A ", " T ", " https://pad.example.org "}})
	if len(got) != 1 {
		t.Fatalf("Normalize() returned %d records, want 1", len(got))
	}
	if got[0].Key != "https://pad.example.org" || got[0].Title != "T" || got[0].License != "" {
		t.Errorf("record not trimmed/padded: %+v", got[0])
	}
}

func TestNormalizeUnparseableTimestamps(t *testing.T) {
	tests := []struct {
		name string
		rows [][]string
		want int
	}{
		{
			name: "bad timestamp without cutoff survives",
			rows: [][]string{row("yesterday", "https://a.example.org", "A", "")},
			want: 1,
		},
		{
			name: "bad timestamp with cutoff is dropped",
			rows: [][]string{
				row("1/7/2025 10:00:00", "https://a.example.org", "A", "sí"),
				row("not a date", "https://a.example.org", "A", ""),
			},
			want: 0,
		},
		{
			name: "bad deletion timestamp deletes every row",
			rows: [][]string{
				row("garbage", "https://a.example.org", "A", "Si"),
				row("9/9/2030 10:00:00", "https://a.example.org", "A", ""),
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.rows); len(got) != tt.want {
				t.Errorf("Normalize() returned %d records, want %d", len(got), tt.want)
			}
		})
	}
}

func TestNormalizeDeletionOnlyAffectsItsURL(t *testing.T) {
	rows := [][]string{
		row("1/7/2025 10:00:00", "https://a.example.org", "A", ""),
		row("1/7/2025 10:00:00", "https://b.example.org", "B", ""),
		row("5/7/2025 10:00:00", "https://a.example.org", "A", "Sí"),
	}

	got := Normalize(rows)
	if len(got) != 1 || got[0].Key != "https://b.example.org" {
		t.Errorf("Normalize() = %v, want only b", keys(got))
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"1/7/2025 10:23:45", true},
		{"01/07/2025 9:03:05", true},
		{"1/7/2025", true},
		{"2025-07-01T10:00:00Z", true},
		{"2025-07-01", true},
		{"", false},
		{"July first", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, ok := ParseTimestamp(tt.in)
			if ok != tt.ok {
				t.Errorf("ParseTimestamp(%q) ok=%v, want %v", tt.in, ok, tt.ok)
			}
		})
	}

	early, _ := ParseTimestamp("2/7/2025")
	late, _ := ParseTimestamp("10/7/2025")
	if !late.After(early) {
		t.Error("day-first parsing expected 10/7 after 2/7")
	}
}
