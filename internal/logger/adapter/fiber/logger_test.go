package fiber_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adapter "github.com/plantr/policyhub/internal/logger/adapter/fiber"

	"github.com/plantr/policyhub/internal/logger"
)

// accessLogLine implements the loggers default json format.
type accessLogLine struct {
	Status int    `json:"status"`
	URI    string `json:"URI"`
	Method string `json:"method"`
}

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		config     adapter.Config
		targetPath string
		wantOutput bool
		wantStatus int
	}{
		{
			name:       "console log disabled no output",
			targetPath: "/",
			config:     adapter.Config{},
			wantOutput: false,
		},
		{
			name:       "get / logs json line",
			targetPath: "/",
			config: adapter.Config{
				Config: logger.Log{
					EnableAccessLogToConsole: true,
					Console:                  logger.Console{Enabled: true},
				},
			},
			wantOutput: true,
			wantStatus: fiber.StatusOK,
		},
		{
			name:       "unknown path logs 404",
			targetPath: "/nope",
			config: adapter.Config{
				Config: logger.Log{
					EnableAccessLogToConsole: true,
					Console:                  logger.Console{Enabled: true},
				},
			},
			wantOutput: true,
			wantStatus: fiber.StatusNotFound,
		},
		{
			name:       "checkalive is not logged",
			targetPath: "/checkalive",
			config: adapter.Config{
				Config: logger.Log{
					EnableAccessLogToConsole: true,
					DisableCheckAlive:        true,
					Console:                  logger.Console{Enabled: true},
				},
				CheckAliveURI: "/checkalive",
			},
			wantOutput: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := captureStdout(t, func() {
				app := fiber.New()
				app.Use(adapter.New(tt.config))
				app.Get("/", func(c *fiber.Ctx) error {
					return c.SendString("ok")
				})
				app.Get("/checkalive", func(c *fiber.Ctx) error {
					return c.SendString("alive")
				})

				req := httptest.NewRequest(fiber.MethodGet, tt.targetPath, nil)
				resp, err := app.Test(req)
				require.NoError(t, err)
				_ = resp.Body.Close()
			})

			if !tt.wantOutput {
				assert.Empty(t, out)
				return
			}

			require.NotEmpty(t, out)

			var line accessLogLine
			require.NoError(t, json.Unmarshal([]byte(out), &line))
			assert.Equal(t, tt.wantStatus, line.Status)
			assert.Equal(t, tt.targetPath, line.URI)
			assert.Equal(t, fiber.MethodGet, line.Method)
		})
	}
}

// captureStdout runs fn with os.Stdout redirected to a pipe and returns what was written.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	stdout := os.Stdout

	r, w, err := os.Pipe()
	require.NoError(t, err)

	os.Stdout = w

	fn()

	_ = w.Close()
	os.Stdout = stdout

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)

	return buf.String()
}
