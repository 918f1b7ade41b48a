package webapi

import (
	"net/http"
	"sync"

	"github.com/apex/log"
	"github.com/labstack/echo/v4"
	"github.com/materials-commons/mcvr/pkg/clog"
	"github.com/materials-commons/mcvr/pkg/vr"
)

// LogController changes the server's log level and output at runtime.
type LogController struct {
	mu              sync.Mutex
	CurrentLogLevel string `json:"current_log_level"`
	CurrentLogFile  string `json:"current_log_file"`
	handler         *clog.Handler
}

func NewLogController(handler *clog.Handler, level, output string) *LogController {
	if output == "" {
		output = "stdout"
	}

	return &LogController{
		CurrentLogLevel: level,
		CurrentLogFile:  output,
		handler:         handler,
	}
}

// SetLogging accepts {"log_level": ..., "log_output": ...}; either may be
// omitted. When the output cannot be opened the level is left unchanged.
func (c *LogController) SetLogging(ctx echo.Context) error {
	var req struct {
		LogLevel  string `json:"log_level"`
		LogOutput string `json:"log_output"`
	}

	if err := ctx.Bind(&req); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var level log.Level
	if req.LogLevel != "" {
		l, err := log.ParseLevel(req.LogLevel)
		if err != nil {
			return vr.NewError(vr.KindInvalidParameter, "log_level", "Invalid log level %s", req.LogLevel)
		}
		level = l
	}

	if req.LogOutput != "" && req.LogOutput != c.CurrentLogFile {
		w, err := clog.OpenOutput(req.LogOutput)
		if err != nil {
			return vr.NewError(vr.KindInvalidParameter, "log_output", "Unable to open log output %s", req.LogOutput)
		}
		c.handler.SetOutput(w)
		c.CurrentLogFile = req.LogOutput
	}

	if req.LogLevel != "" {
		log.SetLevel(level)
		c.CurrentLogLevel = level.String()
	}

	log.Infof("Logging set to level %s, output %s", c.CurrentLogLevel, c.CurrentLogFile)
	return ctx.JSON(http.StatusOK, c)
}

func (c *LogController) ShowCurrentLogging(ctx echo.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ctx.JSON(http.StatusOK, c)
}

// RequireAdmin rejects callers who are not site admins.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if !currentUserIsAdmin(ctx) {
			return vr.NewError(vr.KindAccessDenied, "", "Administrator access required.")
		}
		return next(ctx)
	}
}
