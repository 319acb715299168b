package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		input string
		want  slog.Level
	}{
		{input: "debug", want: slog.LevelDebug},
		{input: " WARN ", want: slog.LevelWarn},
		{input: "err", want: slog.LevelError},
		{input: "", want: slog.LevelInfo},
		{input: "verbose", want: slog.LevelInfo},
	}
	for _, tc := range cases {
		if got := ParseLevel(tc.input); got != tc.want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Config{Level: "info", Format: "json"})
	logger.Debug("hidden")
	logger.Info("reservation approved", slog.Uint64("reservation_id", 7))

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug record written at info level: %s", out)
	}
	if !strings.Contains(out, `"reservation_id":7`) {
		t.Fatalf("expected json attribute, got %s", out)
	}
}

func TestNewTagsServiceAndEnv(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		want []string
	}{
		{"default service", Config{Format: "json", Env: "prod"}, []string{`"service":"room-reservation"`, `"env":"prod"`}},
		{"custom service", Config{Format: "json", Service: "reservation-worker"}, []string{`"service":"reservation-worker"`}},
		{"text", Config{Format: "text", Env: "dev"}, []string{"service=room-reservation", "env=dev"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			New(&buf, tc.cfg).Info("listening")
			for _, w := range tc.want {
				if !strings.Contains(buf.String(), w) {
					t.Fatalf("output %s does not contain %s", buf.String(), w)
				}
			}
			if tc.cfg.Env == "" && strings.Contains(buf.String(), "env") {
				t.Fatalf("empty env must be omitted: %s", buf.String())
			}
		})
	}
}

func TestForReservation(t *testing.T) {
	var buf bytes.Buffer
	ForReservation(New(&buf, Config{Format: "json"}), 4, 12).Info("reservation approved")
	out := buf.String()
	if !strings.Contains(out, `"reservation_id":4`) || !strings.Contains(out, `"room_id":12`) {
		t.Fatalf("missing reservation attributes: %s", out)
	}
}

func TestDebugAddsSource(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, Config{Level: "debug", Format: "json"}).Debug("lock room")
	if !strings.Contains(buf.String(), `"source"`) {
		t.Fatalf("expected source at debug level: %s", buf.String())
	}
}
