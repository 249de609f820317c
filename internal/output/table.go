package output

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/voxgate/voxgate/internal/core"
)

// FormatLanguages renders the supported-language catalog.
func FormatLanguages(format Format, languages map[string]string) (string, error) {
	if format == FormatJSON {
		data, err := json.MarshalIndent(map[string]interface{}{
			"languages":   languages,
			"total_count": len(languages),
		}, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	codes := make([]string, 0, len(languages))
	for code := range languages {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Code", "Language"})
	for _, code := range codes {
		t.AppendRow(table.Row{code, languages[code]})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d languages", len(languages))})

	return t.Render(), nil
}

// FormatHistory renders recent transcription history records.
func FormatHistory(format Format, records []core.TranscriptionRecord) (string, error) {
	if format == FormatJSON {
		type entry struct {
			ID         int64  `json:"id"`
			RequestID  string `json:"request_id"`
			Language   string `json:"language"`
			TextChars  int    `json:"text_chars"`
			DurationMS int64  `json:"duration_ms"`
			Status     string `json:"status"`
			CreatedAt  string `json:"created_at"`
		}
		entries := make([]entry, 0, len(records))
		for _, rec := range records {
			entries = append(entries, entry{
				ID:         rec.ID,
				RequestID:  rec.RequestID,
				Language:   rec.Language,
				TextChars:  rec.TextChars,
				DurationMS: rec.Duration.Milliseconds(),
				Status:     string(rec.Status),
				CreatedAt:  rec.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
			})
		}
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	if len(records) == 0 {
		return "(no transcription history)", nil
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"ID", "Request", "Language", "Chars", "Duration", "Status", "Created"})
	for _, rec := range records {
		t.AppendRow(table.Row{
			rec.ID,
			rec.RequestID,
			rec.Language,
			rec.TextChars,
			fmt.Sprintf("%dms", rec.Duration.Milliseconds()),
			string(rec.Status),
			rec.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		})
	}

	return t.Render(), nil
}
