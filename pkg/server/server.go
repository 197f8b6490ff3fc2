package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/yurifrl/invex/pkg/config"
	"github.com/yurifrl/invex/pkg/models"
	"github.com/yurifrl/invex/pkg/output"
	"github.com/yurifrl/invex/pkg/parser"
	"github.com/yurifrl/invex/pkg/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// maxUpload caps the multipart body held in memory.
const maxUpload = 32 << 20

// Server exposes workbook conversion over HTTP.
type Server struct {
	config    *config.Config
	logger    *log.Logger
	engine    *gin.Engine
	processor *service.Processor
	results   sync.Map
}

// ProcessResponse is the body of a successful conversion.
type ProcessResponse struct {
	Status   string             `json:"status"`
	File     string             `json:"file"`
	Headers  []output.HeaderRow `json:"headers"`
	Items    []output.ItemRow   `json:"items"`
	Invoices []models.Invoice   `json:"invoices"`
}

func New(cfg *config.Config, logger *log.Logger) (*Server, error) {
	processor, err := service.NewProcessor(cfg, logger)
	if err != nil {
		return nil, err
	}

	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		config:    cfg,
		logger:    logger,
		engine:    gin.New(),
		processor: processor,
	}
	s.engine.MaxMultipartMemory = maxUpload
	s.setupRoutes()
	return s, nil
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	return s.engine.Run(addr)
}

func (s *Server) setupRoutes() {
	s.engine.Use(s.withLogging(), s.withRecovery())

	s.engine.GET("/health", s.handleHealth)

	api := s.engine.Group("/api")
	api.POST("/process", s.handleProcess)
	api.GET("/files/:name", s.handleFiles)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) handleProcess(c *gin.Context) {
	file, header, err := c.Request.FormFile("workbook")
	if err != nil {
		s.respondError(c, http.StatusBadRequest, "workbook file required", err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, "failed to read file", err)
		return
	}

	invoices, err := s.processor.ProcessBytes(data, header.Filename)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, parser.ErrInvalidWorkbook) || errors.Is(err, parser.ErrUnsupportedFile) {
			status = http.StatusBadRequest
		}
		s.respondError(c, status, "failed to process workbook", err)
		return
	}

	filename := service.OutputName(header.Filename)
	s.results.Store(filename, invoices)

	headers, items := s.processor.Formatter().Rows(invoices)
	if items == nil {
		items = []output.ItemRow{}
	}
	s.logger.Info("processed workbook", "file", header.Filename, "invoices", len(invoices), "items", len(items))

	c.JSON(http.StatusOK, ProcessResponse{
		Status:   "success",
		File:     filename,
		Headers:  headers,
		Items:    items,
		Invoices: invoices,
	})
}

// handleFiles serves the converted workbook of a previously processed upload.
func (s *Server) handleFiles(c *gin.Context) {
	filename := strings.TrimSpace(c.Param("name"))
	if filename == "" {
		s.respondError(c, http.StatusBadRequest, "filename required", nil)
		return
	}

	value, ok := s.results.Load(filename)
	if !ok {
		s.respondError(c, http.StatusNotFound, "file not found", nil)
		return
	}
	invoices, ok := value.([]models.Invoice)
	if !ok {
		s.respondError(c, http.StatusInternalServerError, "internal type assertion error", nil)
		return
	}

	data, err := s.processor.Formatter().XLSX(invoices)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, "failed to build workbook", err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// --- helpers ---

// respondError logs the error and returns a minimal JSON error body.
func (s *Server) respondError(c *gin.Context, status int, message string, err error) {
	if err != nil {
		s.logger.Warn("request error", "status", status, "msg", message, "err", err, "method", c.Request.Method, "path", c.Request.URL.Path)
	} else {
		s.logger.Warn("request error", "status", status, "msg", message, "method", c.Request.Method, "path", c.Request.URL.Path)
	}
	c.AbortWithStatusJSON(status, gin.H{
		"status": "error",
		"error":  message,
	})
}

func (s *Server) withLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"remote", c.ClientIP(),
			"duration", time.Since(start),
		)
	}
}

func (s *Server) withRecovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", "panic", rec, "method", c.Request.Method, "path", c.Request.URL.Path)
				s.respondError(c, http.StatusInternalServerError, "internal server error", fmt.Errorf("panic: %v", rec))
			}
		}()
		c.Next()
	}
}
