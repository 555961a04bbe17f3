package builder

import (
	"encoding/base64"
	"fmt"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/redirector-packager/internal/service/packager"
	"github.com/oshokin/redirector-packager/internal/version"
)

// ReportFilename is written into the output folder after every run.
const ReportFilename = "redirector-build.yaml"

// Report summarises a packaging run.
type Report struct {
	// VersionNumber is the packager version that produced the artifacts.
	VersionNumber string `yaml:"version"`
	// Targets lists every attempted target in build order.
	Targets []TargetReport `yaml:"targets"`
}

// TargetReport describes the outcome of one target.
type TargetReport struct {
	Target   string `yaml:"target"`
	Archive  string `yaml:"archive,omitempty"`
	Checksum string `yaml:"checksum,omitempty"`
	Size     int64  `yaml:"size,omitempty"`
	Entries  int    `yaml:"entries,omitempty"`
	Signed   string `yaml:"signed,omitempty"`
	Error    string `yaml:"error,omitempty"`
}

// NewReport produces an empty Report stamped with the current version.
func NewReport() *Report {
	return &Report{
		VersionNumber: version.Short(),
		Targets:       make([]TargetReport, 0, 4),
	}
}

// Add records the outcome of one target; result may be nil when nothing was published.
func (r *Report) Add(target string, result *packager.Artifact, err error) {
	entry := TargetReport{Target: target}

	if result != nil {
		entry.Archive = filepath.Base(result.Path)
		entry.Checksum = base64.StdEncoding.EncodeToString(result.Checksum)
		entry.Size = result.Size
		entry.Entries = len(result.Entries)

		if result.SignedPath != "" {
			entry.Signed = filepath.Base(result.SignedPath)
		}
	}

	if err != nil {
		entry.Error = err.Error()
	}

	r.Targets = append(r.Targets, entry)
}

// Marshal renders the report as YAML.
func (r *Report) Marshal() ([]byte, error) {
	contents, err := yaml.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}

	return contents, nil
}
