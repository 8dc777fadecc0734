package models

import (
	"testing"
	"time"
)

func TestDiaryPreview(t *testing.T) {
	tests := []struct {
		name    string
		content string
		n       int
		want    string
	}{
		{name: "short content unchanged", content: "hello", n: 10, want: "hello"},
		{name: "newlines collapsed", content: "line one\nline two", n: 40, want: "line one line two"},
		{name: "truncated with ellipsis", content: "abcdefghij", n: 8, want: "abcde..."},
		{name: "multibyte runes", content: "今日はとても良い天気でした", n: 6, want: "今日は..."},
		{name: "zero limit keeps all", content: "keep everything", n: 0, want: "keep everything"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Diary{Content: tt.content}
			if got := d.Preview(tt.n); got != tt.want {
				t.Errorf("Preview(%d) = %q, want %q", tt.n, got, tt.want)
			}
		})
	}
}

func TestDiarySaves(t *testing.T) {
	if got := (Diary{}).Saves(); got != 0 {
		t.Errorf("Saves() with nil count = %d, want 0", got)
	}
	n := 3
	if got := (Diary{SavedCount: &n}).Saves(); got != 3 {
		t.Errorf("Saves() = %d, want 3", got)
	}
}

func TestTimestampUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
		zero    bool
	}{
		{
			name:  "RFC3339 with zone",
			input: `"2026-10-17T09:30:00+09:00"`,
			want:  time.Date(2026, 10, 17, 0, 30, 0, 0, time.UTC),
		},
		{
			name:  "naive ISO with microseconds",
			input: `"2026-10-17T09:30:00.123456"`,
			want:  time.Date(2026, 10, 17, 9, 30, 0, 123456000, time.UTC),
		},
		{
			name:  "space separated",
			input: `"2026-10-17 09:30:00"`,
			want:  time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC),
		},
		{name: "null", input: `null`, zero: true},
		{name: "empty string", input: `""`, zero: true},
		{name: "garbage", input: `"yesterday"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts Timestamp
			err := ts.UnmarshalJSON([]byte(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("UnmarshalJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if tt.zero {
				if !ts.IsZero() {
					t.Errorf("expected zero time, got %v", ts.Time)
				}
				return
			}
			if !ts.Equal(tt.want) {
				t.Errorf("UnmarshalJSON() = %v, want %v", ts.Time, tt.want)
			}
		})
	}
}

func TestSettingsPairsRoundTrip(t *testing.T) {
	in := DefaultSettings()
	in.APIURL = "http://localhost:8000"
	in.Timezone = "Asia/Tokyo"
	in.NotificationsEnabled = false
	in.RequestsPerSecond = 2.5

	out, err := SettingsFromPairs(in.Pairs())
	if err != nil {
		t.Fatalf("SettingsFromPairs() error = %v", err)
	}
	if out != in {
		t.Errorf("SettingsFromPairs(Pairs()) = %+v, want %+v", out, in)
	}
}

func TestSettingsFromPairsInvalidRate(t *testing.T) {
	_, err := SettingsFromPairs(map[string]string{"requests_per_second": "fast"})
	if err == nil {
		t.Error("expected error for non-numeric requests_per_second")
	}
}

func TestSettingsFromPairsDefaults(t *testing.T) {
	out, err := SettingsFromPairs(map[string]string{})
	if err != nil {
		t.Fatalf("SettingsFromPairs() error = %v", err)
	}
	if out != DefaultSettings() {
		t.Errorf("SettingsFromPairs(empty) = %+v, want defaults", out)
	}
}
