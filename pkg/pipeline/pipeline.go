// Package pipeline runs the SBOM analysis used by the CLI and the HTTP API.
//
// By centralizing the stage ordering here, both entry points produce the
// same snapshot for the same document.
//
// # Architecture
//
// The pipeline consists of five stages:
//
//  1. Parse: detect the format and normalize packages and edges
//  2. Vulnerabilities: query OSV in paced batches
//  3. Health: registry metadata, then GitHub signals, per package
//  4. Score: compute the composite risk score per package
//  5. Resolve: classify direct and transitive dependencies
//
// Only parse errors fail a run. Every enrichment failure degrades to
// missing data for the affected package.
//
// # Usage
//
//	runner := pipeline.NewRunner(pipeline.DefaultSources(c, pipeline.SourceOptions{}), logger)
//	snap, err := runner.Analyze(ctx, pipeline.Input{FileName: "bom.json", Data: data}, pipeline.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(len(snap.Packages), "packages")
package pipeline

import (
	"fmt"
	"time"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultVulnConcurrency is the number of OSV queries per batch.
	DefaultVulnConcurrency = 10

	// DefaultVulnPause is the wait between OSV batches.
	DefaultVulnPause = 100 * time.Millisecond

	// DefaultHealthConcurrency is the number of packages enriched per batch.
	DefaultHealthConcurrency = 5

	// DefaultHealthPause is the wait between health batches.
	DefaultHealthPause = 200 * time.Millisecond

	// DefaultCallTimeout bounds every outbound call.
	DefaultCallTimeout = 10 * time.Second
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains the tunables of one pipeline run.
type Options struct {
	VulnConcurrency   int           `json:"vuln_concurrency,omitempty"`
	VulnPause         time.Duration `json:"vuln_pause,omitempty"`
	HealthConcurrency int           `json:"health_concurrency,omitempty"`
	HealthPause       time.Duration `json:"health_pause,omitempty"`
	CallTimeout       time.Duration `json:"call_timeout,omitempty"`

	SkipVulnerabilities bool `json:"skip_vulnerabilities,omitempty"`
	SkipHealth          bool `json:"skip_health,omitempty"`
	Refresh             bool `json:"refresh,omitempty"` // bypass the response cache

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Input is the document to analyze.
type Input struct {
	FileName string
	Data     []byte
}

// ValidateAndSetDefaults checks the options and fills in defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.VulnConcurrency < 0 || o.HealthConcurrency < 0 {
		return fmt.Errorf("concurrency must not be negative")
	}
	if o.CallTimeout < 0 {
		return fmt.Errorf("call timeout must not be negative")
	}

	if o.VulnConcurrency == 0 {
		o.VulnConcurrency = DefaultVulnConcurrency
	}
	if o.VulnPause == 0 {
		o.VulnPause = DefaultVulnPause
	}
	if o.HealthConcurrency == 0 {
		o.HealthConcurrency = DefaultHealthConcurrency
	}
	if o.HealthPause == 0 {
		o.HealthPause = DefaultHealthPause
	}
	if o.CallTimeout == 0 {
		o.CallTimeout = DefaultCallTimeout
	}
	o.validated = true
	return nil
}
