package parser

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/yurifrl/invex/pkg/grid"
)

var (
	// ErrInvalidWorkbook is returned when the bytes cannot be read as a workbook.
	ErrInvalidWorkbook = errors.New("invalid workbook")
	// ErrUnsupportedFile is returned for file types no loader handles.
	ErrUnsupportedFile = errors.New("unsupported file type")
)

type FileType string

const (
	XLSX FileType = "xlsx"
	XLS  FileType = "xls"
	CSV  FileType = "csv"
)

var (
	zipMagic = []byte("PK\x03\x04")
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

type Parser struct {
	logger *log.Logger
}

func New(logger *log.Logger) *Parser {
	return &Parser{
		logger: logger,
	}
}

// ProcessBytes loads every sheet of the workbook in data, in workbook order.
func (p *Parser) ProcessBytes(data []byte, filename string) ([]grid.Sheet, error) {
	fileType := DetectType(data, filename)
	p.logger.Debug("detected file type", "type", fileType, "filename", filename)

	var (
		sheets []grid.Sheet
		err    error
	)
	switch fileType {
	case XLSX:
		sheets, err = p.ParseXLSX(data)
	case XLS:
		sheets, err = p.ParseXLS(data)
	case CSV:
		sheets, err = p.ParseCSV(data, sheetName(filename))
	default:
		p.logger.Debug("unknown file type", "filename", filename)
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, filename)
	}
	if err != nil {
		return nil, err
	}

	p.logger.Debug("loaded workbook", "filename", filename, "sheets", len(sheets))
	return sheets, nil
}

// DetectType uses the file signature and falls back to the extension.
func DetectType(data []byte, filename string) FileType {
	switch {
	case bytes.HasPrefix(data, zipMagic):
		return XLSX
	case bytes.HasPrefix(data, oleMagic):
		return XLS
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return XLSX
	case ".xls":
		return XLS
	case ".csv":
		return CSV
	}
	return ""
}

// Supported reports whether filename has an extension ProcessBytes handles.
func Supported(filename string) bool {
	return DetectType(nil, filename) != ""
}

func sheetName(filename string) string {
	base := filepath.Base(filename)
	if name := strings.TrimSuffix(base, filepath.Ext(base)); name != "" && name != "." {
		return name
	}
	return "Sheet1"
}
