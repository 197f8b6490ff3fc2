package plan

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Plan lists the workbooks of a batch conversion.
type Plan struct {
	OutputDir string     `yaml:"output_dir"`
	Workbooks []Workbook `yaml:"workbooks"`
}

type Workbook struct {
	FilePath   string `yaml:"file"`
	OutputPath string `yaml:"output"`
}

func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}

	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	if len(p.Workbooks) == 0 {
		return nil, fmt.Errorf("plan has no workbooks")
	}
	for i, wb := range p.Workbooks {
		if strings.TrimSpace(wb.FilePath) == "" {
			return nil, fmt.Errorf("workbook %d has no file", i+1)
		}
	}
	return &p, nil
}

// File returns the workbook path with a leading ~ expanded.
func (w Workbook) File() (string, error) {
	return expandHome(w.FilePath)
}

// Output returns where the converted workbook goes. An explicit output wins,
// then the plan's output_dir, then the input's directory.
func (w Workbook) Output(outputDir string) (string, error) {
	if w.OutputPath != "" {
		return expandHome(w.OutputPath)
	}

	in, err := w.File()
	if err != nil {
		return "", err
	}
	base := filepath.Base(in)
	name := strings.TrimSuffix(base, filepath.Ext(base)) + "-invex.xlsx"

	if outputDir != "" {
		dir, err := expandHome(outputDir)
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, name), nil
	}
	return filepath.Join(filepath.Dir(in), name), nil
}

func (p *Plan) Print() {
	if p.OutputDir != "" {
		fmt.Printf("Output dir: %s\n", p.OutputDir)
	}
	for i, wb := range p.Workbooks {
		out, _ := wb.Output(p.OutputDir)
		fmt.Printf("[%d] file=%s output=%s\n", i+1, wb.FilePath, out)
	}
}

func expandHome(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, path[2:]), nil
	}
	return path, nil
}
