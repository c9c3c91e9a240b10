package devserver

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"

	"wyboard/internal/kanban/models"
	"wyboard/internal/kanban/remote"
)

// BasePath is where the API is mounted, matching the production backend
const BasePath = "/pms"

type errorResponse struct {
	Message string `json:"message"`
}

// sonicSerializer plugs sonic into echo's Bind and JSON helpers
type sonicSerializer struct{}

func (sonicSerializer) Serialize(c echo.Context, i any, indent string) error {
	enc := sonic.ConfigStd.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (sonicSerializer) Deserialize(c echo.Context, i any) error {
	err := sonic.ConfigStd.NewDecoder(c.Request().Body).Decode(i)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON body").SetInternal(err)
	}
	return nil
}

// New builds the echo server. A non-empty token makes every API route
// require "Authorization: Bearer <token>".
func New(svc remote.Service, token string, logger *log.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = sonicSerializer{}
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		TargetHeader: remote.RequestIDHeader,
	}))
	e.Use(requestLogger(logger))

	e.GET("/healthz", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	g := e.Group(BasePath)
	if token != "" {
		g.Use(bearerAuth(token))
	}
	Register(g, svc)
	return e
}

// Register wires the backend routes on a group
func Register(g *echo.Group, svc remote.Service) {
	g.GET("/projects/:pid/columns", listColumns(svc))
	g.POST("/projects/:pid/columns", createColumn(svc))
	g.PUT("/projects/:pid/columns/reorder", reorderColumns(svc))
	g.PUT("/projects/:pid/columns/:cid", updateColumn(svc))
	g.DELETE("/projects/:pid/columns/:cid", deleteColumn(svc))

	g.GET("/tasks/column/:cid", listTasks(svc))
	g.POST("/tasks", createTask(svc))
	g.PUT("/tasks/:id", updateTask(svc))
	g.DELETE("/tasks/:id", deleteTask(svc))
	g.POST("/tasks/:id/move", moveTask(svc))
	g.PATCH("/tasks/:id/reorder", reorderTask(svc))

	g.GET("/users/project/:pid", listMembers(svc))
}

// Serve runs the server until ctx is cancelled
func Serve(ctx context.Context, e *echo.Echo, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	}
}

func requestLogger(logger *log.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			logger.WithFields(log.Fields{
				"method":      c.Request().Method,
				"path":        c.Request().URL.Path,
				"status":      c.Response().Status,
				"request_id":  c.Response().Header().Get(remote.RequestIDHeader),
				"duration_ms": time.Since(start).Milliseconds(),
			}).Info("request")
			return nil
		}
	}
}

// bearerAuth accepts "Authorization: Bearer <token>" only
func bearerAuth(token string) echo.MiddlewareFunc {
	return middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
		KeyLookup:  "header:" + echo.HeaderAuthorization,
		AuthScheme: "Bearer",
		Validator: func(key string, _ echo.Context) (bool, error) {
			return subtle.ConstantTimeCompare([]byte(key), []byte(token)) == 1, nil
		},
		ErrorHandler: func(_ error, c echo.Context) error {
			return c.JSON(http.StatusUnauthorized, errorResponse{Message: "unauthorized"})
		},
	})
}

// fail maps backend errors to status codes
func fail(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrInvalid):
		status = http.StatusBadRequest
	}
	return c.JSON(status, errorResponse{Message: err.Error()})
}

func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be numeric", ErrInvalid, name)
	}
	return id, nil
}

func queryInt(c echo.Context, name string) (int, error) {
	v, err := strconv.Atoi(c.QueryParam(name))
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", ErrInvalid, name)
	}
	return v, nil
}

func listColumns(svc remote.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		pid, err := pathID(c, "pid")
		if err != nil {
			return fail(c, err)
		}
		cols, err := svc.ListColumns(c.Request().Context(), pid)
		if err != nil {
			return fail(c, err)
		}
		if cols == nil {
			cols = []models.Column{}
		}
		return c.JSON(http.StatusOK, cols)
	}
}

func createColumn(svc remote.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		pid, err := pathID(c, "pid")
		if err != nil {
			return fail(c, err)
		}
		var req models.ColumnRequest
		if err := c.Bind(&req); err != nil {
			return err
		}
		col, err := svc.CreateColumn(c.Request().Context(), pid, req)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusCreated, col)
	}
}

func updateColumn(svc remote.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		pid, err := pathID(c, "pid")
		if err != nil {
			return fail(c, err)
		}
		cid, err := pathID(c, "cid")
		if err != nil {
			return fail(c, err)
		}

		var upd models.ColumnUpdate
		q := c.QueryParams()
		if q.Has("name") {
			upd.Name = models.StringPtr(q.Get("name"))
		}
		if q.Has("color") {
			upd.Color = models.StringPtr(q.Get("color"))
		}
		if q.Has("wipLimit") {
			limit, err := queryInt(c, "wipLimit")
			if err != nil {
				return fail(c, err)
			}
			upd.WIPLimit = &limit
		}

		col, err := svc.UpdateColumn(c.Request().Context(), pid, cid, upd)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, col)
	}
}

func deleteColumn(svc remote.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		pid, err := pathID(c, "pid")
		if err != nil {
			return fail(c, err)
		}
		cid, err := pathID(c, "cid")
		if err != nil {
			return fail(c, err)
		}
		target, err := strconv.ParseInt(c.QueryParam("targetColumnId"), 10, 64)
		if err != nil {
			return fail(c, fmt.Errorf("%w: targetColumnId is required", ErrInvalid))
		}
		if err := svc.DeleteColumn(c.Request().Context(), pid, cid, target); err != nil {
			return fail(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func reorderColumns(svc remote.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		pid, err := pathID(c, "pid")
		if err != nil {
			return fail(c, err)
		}
		var ids []int64
		if err := c.Bind(&ids); err != nil {
			return err
		}
		if err := svc.ReorderColumns(c.Request().Context(), pid, ids); err != nil {
			return fail(c, err)
		}
		return c.NoContent(http.StatusOK)
	}
}

func listTasks(svc remote.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		cid, err := pathID(c, "cid")
		if err != nil {
			return fail(c, err)
		}
		tasks, err := svc.ListTasks(c.Request().Context(), cid)
		if err != nil {
			return fail(c, err)
		}
		if tasks == nil {
			tasks = []models.Task{}
		}
		return c.JSON(http.StatusOK, tasks)
	}
}

func createTask(svc remote.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req models.TaskRequest
		if err := c.Bind(&req); err != nil {
			return err
		}
		task, err := svc.CreateTask(c.Request().Context(), req)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusCreated, task)
	}
}

func updateTask(svc remote.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathID(c, "id")
		if err != nil {
			return fail(c, err)
		}
		var req models.TaskRequest
		if err := c.Bind(&req); err != nil {
			return err
		}
		task, err := svc.UpdateTask(c.Request().Context(), id, req)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, task)
	}
}

func deleteTask(svc remote.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathID(c, "id")
		if err != nil {
			return fail(c, err)
		}
		if err := svc.DeleteTask(c.Request().Context(), id); err != nil {
			return fail(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func moveTask(svc remote.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathID(c, "id")
		if err != nil {
			return fail(c, err)
		}
		columnID, err := strconv.ParseInt(c.QueryParam("columnId"), 10, 64)
		if err != nil {
			return fail(c, fmt.Errorf("%w: columnId is required", ErrInvalid))
		}
		position, err := queryInt(c, "position")
		if err != nil {
			return fail(c, err)
		}
		task, err := svc.MoveTask(c.Request().Context(), id, columnID, position)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, task)
	}
}

func reorderTask(svc remote.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathID(c, "id")
		if err != nil {
			return fail(c, err)
		}
		position, err := queryInt(c, "newPosition")
		if err != nil {
			return fail(c, err)
		}
		task, err := svc.ReorderTask(c.Request().Context(), id, position)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, task)
	}
}

func listMembers(svc remote.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		pid, err := pathID(c, "pid")
		if err != nil {
			return fail(c, err)
		}
		members, err := svc.ListMembers(c.Request().Context(), pid)
		if err != nil {
			return fail(c, err)
		}
		if members == nil {
			members = []models.Member{}
		}
		return c.JSON(http.StatusOK, members)
	}
}
