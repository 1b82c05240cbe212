package fileservice

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"net/http"
	"strconv"

	json "github.com/goccy/go-json"
	"github.com/labstack/echo/v5"
)

// Server exposes the registry over HTTP. Window bytes travel base64-encoded
// so the payload stays printable end to end.
type Server struct {
	registry *Registry
	window   int
}

// NewServer wraps registry; window is the byte count of one window read.
func NewServer(registry *Registry, window int) *Server {
	if window <= 0 {
		window = 256
	}
	return &Server{registry: registry, window: window}
}

func (s *Server) Register(e *echo.Echo) {
	e.POST("/files", s.handleOpen)
	e.GET("/files", s.handleList)
	e.DELETE("/files/:id", s.handleClose)
	e.GET("/files/:id/window", s.handleWindow)
	e.GET("/files/:id/inspect", s.handleInspect)
	e.GET("/files/:id/find", s.handleFind)
}

type OpenRequest struct {
	Path string `json:"path"`
}

type WindowResponse struct {
	Offset int64  `json:"offset"`
	Data   string `json:"data"`
}

type FindResponse struct {
	Offset int64 `json:"offset"`
}

// ErrorBody is the wire form of a failed request.
type ErrorBody struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

func writeError(c *echo.Context, status int, errType, msg string) error {
	return c.JSON(status, map[string]any{
		"error": ErrorBody{Message: msg, Type: errType},
	})
}

func writeRegistryError(c *echo.Context, err error) error {
	if errors.Is(err, ErrNotOpen) {
		return writeError(c, http.StatusNotFound, "not_found_error", err.Error())
	}
	return writeError(c, http.StatusBadRequest, "invalid_request_error", err.Error())
}

func (s *Server) handleOpen(c *echo.Context) error {
	var req OpenRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return writeError(c, http.StatusBadRequest, "invalid_request_error", err.Error())
	}
	if req.Path == "" {
		return writeError(c, http.StatusBadRequest, "invalid_request_error", "path is required")
	}
	info, err := s.registry.Open(req.Path)
	if err != nil {
		return writeError(c, http.StatusBadRequest, "invalid_request_error", err.Error())
	}
	return c.JSON(http.StatusOK, info)
}

func (s *Server) handleList(c *echo.Context) error {
	return c.JSON(http.StatusOK, s.registry.List())
}

func (s *Server) handleClose(c *echo.Context) error {
	id, err := fileID(c)
	if err != nil {
		return writeError(c, http.StatusBadRequest, "invalid_request_error", err.Error())
	}
	if err := s.registry.Close(id); err != nil {
		return writeRegistryError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"file": id, "closed": true})
}

func (s *Server) handleWindow(c *echo.Context) error {
	id, err := fileID(c)
	if err != nil {
		return writeError(c, http.StatusBadRequest, "invalid_request_error", err.Error())
	}
	offset, err := offsetParam(c)
	if err != nil {
		return writeError(c, http.StatusBadRequest, "invalid_request_error", err.Error())
	}
	data, err := s.registry.ReadWindow(id, offset, s.window)
	if err != nil {
		return writeRegistryError(c, err)
	}
	return c.JSON(http.StatusOK, WindowResponse{
		Offset: offset,
		Data:   base64.StdEncoding.EncodeToString(data),
	})
}

func (s *Server) handleInspect(c *echo.Context) error {
	id, err := fileID(c)
	if err != nil {
		return writeError(c, http.StatusBadRequest, "invalid_request_error", err.Error())
	}
	offset, err := offsetParam(c)
	if err != nil {
		return writeError(c, http.StatusBadRequest, "invalid_request_error", err.Error())
	}
	bundle, err := s.registry.Inspect(id, offset)
	if err != nil {
		return writeRegistryError(c, err)
	}
	return c.JSON(http.StatusOK, bundle)
}

func (s *Server) handleFind(c *echo.Context) error {
	id, err := fileID(c)
	if err != nil {
		return writeError(c, http.StatusBadRequest, "invalid_request_error", err.Error())
	}
	pattern, err := hex.DecodeString(c.QueryParam("pattern"))
	if err != nil {
		return writeError(c, http.StatusBadRequest, "invalid_request_error", "pattern must be hex encoded")
	}
	if len(pattern) == 0 {
		return writeError(c, http.StatusBadRequest, "invalid_request_error", "pattern is required")
	}
	from := int64(0)
	if q := c.QueryParam("from"); q != "" {
		from, err = strconv.ParseInt(q, 10, 64)
		if err != nil {
			return writeError(c, http.StatusBadRequest, "invalid_request_error", "invalid from offset")
		}
	}
	forward := c.QueryParam("dir") != "backward"
	pos, err := s.registry.Find(id, pattern, from, forward)
	if err != nil {
		return writeRegistryError(c, err)
	}
	return c.JSON(http.StatusOK, FindResponse{Offset: pos})
}

func fileID(c *echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return 0, errors.New("invalid file id")
	}
	return id, nil
}

func offsetParam(c *echo.Context) (int64, error) {
	q := c.QueryParam("offset")
	if q == "" {
		return 0, nil
	}
	offset, err := strconv.ParseInt(q, 10, 64)
	if err != nil {
		return 0, errors.New("invalid offset")
	}
	return offset, nil
}
