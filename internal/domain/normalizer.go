package domain

import (
	"net/url"
	"time"
)

// deletedFlag is the folded value of the deletion column marking a removal.
const deletedFlag = "si"

// cutoff is the latest deletion time recorded for a URL.
// unbounded is set when a deletion marker carries an unparseable timestamp.
type cutoff struct {
	at        time.Time
	unbounded bool
}

// Normalize turns raw spreadsheet rows (header excluded) into the active
// record set.
//
// Rows marked deleted hide every row of the same URL that is not strictly
// newer than the latest deletion. Rows missing a required field or carrying a
// malformed URL are dropped. When several rows share a URL the last one in
// spreadsheet order wins, so the result is ordered newest first.
func Normalize(rows [][]string) []*Application {
	apps := make([]*Application, 0, len(rows))
	for _, row := range rows {
		apps = append(apps, FromRow(row))
	}

	cutoffs := deletionCutoffs(apps)

	valid := make([]*Application, 0, len(apps))
	for _, app := range apps {
		if !survivesDeletion(app, cutoffs) {
			continue
		}
		if !IsValid(app) {
			continue
		}
		valid = append(valid, app)
	}

	out := make([]*Application, 0, len(valid))
	seen := make(map[string]bool, len(valid))
	for i := len(valid) - 1; i >= 0; i-- {
		app := valid[i]
		if seen[app.URL] {
			continue
		}
		seen[app.URL] = true
		app.Key = app.URL
		out = append(out, app)
	}

	return out
}

// IsDeletionMarker reports whether a row requests removal of its URL.
func IsDeletionMarker(app *Application) bool {
	return Fold(app.Deleted) == deletedFlag
}

// IsValid reports whether the required fields are present and the URL is a
// well-formed absolute URL.
func IsValid(app *Application) bool {
	if app.AuthorEmail == "" || app.AuthorName == "" || app.Title == "" || app.URL == "" {
		return false
	}
	return isAbsoluteURL(app.URL)
}

func isAbsoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.IsAbs() && u.Host != ""
}

func deletionCutoffs(apps []*Application) map[string]cutoff {
	cutoffs := make(map[string]cutoff)
	for _, app := range apps {
		if app.URL == "" || !IsDeletionMarker(app) {
			continue
		}

		c := cutoffs[app.URL]
		ts, ok := ParseTimestamp(app.Timestamp)
		if !ok {
			c.unbounded = true
		} else if ts.After(c.at) {
			c.at = ts
		}
		cutoffs[app.URL] = c
	}
	return cutoffs
}

// survivesDeletion keeps rows without URL (validation drops them later) and
// rows strictly newer than their URL's cutoff.
func survivesDeletion(app *Application, cutoffs map[string]cutoff) bool {
	if app.URL == "" {
		return true
	}
	c, ok := cutoffs[app.URL]
	if !ok {
		return true
	}
	if c.unbounded {
		return false
	}
	ts, ok := ParseTimestamp(app.Timestamp)
	if !ok {
		return false
	}
	return ts.After(c.at)
}
