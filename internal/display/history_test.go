package display

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/harrison/mtpget/internal/history"
	"github.com/harrison/mtpget/internal/models"
)

func TestRenderHistory(t *testing.T) {
	var buf bytes.Buffer
	records := []*history.OutcomeRecord{
		{
			RunID:        "0f8fad5b-d9cb-469f-a165-70867728950e",
			FileID:       11,
			Destination:  "out/photo.jpg",
			Status:       models.FetchStatusFailed,
			ErrorMessage: "exit status 1",
			CreatedAt:    time.Date(2026, 3, 1, 9, 30, 0, 0, time.Local),
		},
		{
			RunID:       "short",
			FileID:      10,
			Destination: "out/photo.jpg",
			Status:      models.FetchStatusFetched,
			CreatedAt:   time.Date(2026, 3, 1, 9, 29, 0, 0, time.Local),
		},
	}

	if err := RenderHistory(&buf, records); err != nil {
		t.Fatalf("RenderHistory() error = %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d: %q", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "TIME") {
		t.Errorf("unexpected header %q", lines[0])
	}
	if fields := strings.Fields(lines[1]); len(fields) < 6 || fields[2] != "0f8fad5b" || fields[4] != "failed" {
		t.Errorf("unexpected failed row %q", lines[1])
	}
	if !strings.Contains(lines[1], "2026-03-01 09:30:00") || !strings.Contains(lines[1], "exit status 1") {
		t.Errorf("unexpected failed row %q", lines[1])
	}
	if fields := strings.Fields(lines[2]); fields[2] != "short" || fields[len(fields)-1] != "-" {
		t.Errorf("unexpected fetched row %q", lines[2])
	}
}
