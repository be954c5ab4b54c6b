package logger_test

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog/log"

	"github.com/parley-chat/parley/internal/logger"
)

func TestInit(t *testing.T) {
	type testCase struct {
		name             string
		cfg              logger.Log
		wantErr          error
		shouldHaveOutput bool
		outputIsJSON     bool
	}

	testCases := []testCase{
		{
			name: "no logger enabled",
			cfg: logger.Log{
				LogLevel:    "info",
				ServiceName: "test",
				AppName:     "test",
			},
			shouldHaveOutput: false,
		},
		{
			name: "console enabled log level info",
			cfg: logger.Log{
				LogLevel:    "info",
				ServiceName: "test",
				AppName:     "test",
				Console:     logger.Console{Enabled: true},
			},
			shouldHaveOutput: true,
			outputIsJSON:     true,
		},
		{
			name: "console writer enabled",
			cfg: logger.Log{
				LogLevel:    "info",
				ServiceName: "test",
				AppName:     "test",
				Console:     logger.Console{Enabled: true, UseConsoleWriter: true},
			},
			shouldHaveOutput: true,
		},
		{
			name: "unknown log level",
			cfg: logger.Log{
				LogLevel:    "shouting",
				ServiceName: "test",
				AppName:     "test",
			},
		},
		{
			name: "missing service name",
			cfg: logger.Log{
				LogLevel: "info",
				AppName:  "test",
			},
			wantErr: logger.ErrServiceNameIsEmpty,
		},
		{
			name: "missing app name",
			cfg: logger.Log{
				LogLevel:    "info",
				ServiceName: "test",
			},
			wantErr: logger.ErrAppNameIsEmpty,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := captureStdout(t, func() {
				err := logger.Init(tc.cfg)

				switch tc.name {
				case "unknown log level":
					if err == nil {
						t.Fatal("Init() should fail for unknown log level")
					}

					return
				default:
					if tc.wantErr != nil {
						if err == nil || !strings.Contains(err.Error(), tc.wantErr.Error()) {
							t.Fatalf("Init() error = %v, want %v", err, tc.wantErr)
						}

						return
					}

					if err != nil {
						t.Fatalf("Init() error = %v", err)
					}
				}

				log.Info().Msg("hello")
			})

			if tc.shouldHaveOutput && out == "" {
				t.Error("expected log output, got none")
			}

			if !tc.shouldHaveOutput && out != "" {
				t.Errorf("expected no log output, got %q", out)
			}

			if tc.outputIsJSON {
				var event map[string]any
				if err := json.Unmarshal([]byte(out), &event); err != nil {
					t.Errorf("log output is not JSON: %v", err)
				}
			}
		})
	}
}

// captureStdout redirects os.Stdout while fn runs and returns what was written.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	orig := os.Stdout

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe() error = %v", err)
	}

	os.Stdout = w

	defer func() { os.Stdout = orig }()

	fn()

	_ = w.Close()

	var buf bytes.Buffer

	_, _ = io.Copy(&buf, r)

	return buf.String()
}
