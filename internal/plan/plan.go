// Package plan holds the resource plan negotiated for one Gaussian job
// and the rejection errors raised while negotiating or checking it.
package plan

import (
	"fmt"
	"time"
)

// Queue is a scheduling tier token as understood by the cluster.
type Queue string

const (
	QueueBatch      Queue = "batch" // standard, allocation-scoped
	QueueBackfill   Queue = "bf"    // opportunistic, shared (ikt)
	QueueCheckpoint Queue = "ckpt"  // opportunistic, allocation-scoped (mox)
)

// Opportunistic reports whether q runs on capacity not otherwise reserved.
func (q Queue) Opportunistic() bool {
	return q == QueueBackfill || q == QueueCheckpoint
}

// AllocationScoped reports whether submitting to q requires an allocation.
func (q Queue) AllocationScoped() bool {
	return q == QueueBatch || q == QueueCheckpoint
}

// TimeUnit is the unit a walltime magnitude is expressed in.
type TimeUnit string

const (
	Hours   TimeUnit = "hr"
	Minutes TimeUnit = "min"
)

// Walltime is a magnitude with a queue-dependent unit.
type Walltime struct {
	Amount int
	Unit   TimeUnit
}

// Duration converts the walltime to a time.Duration.
func (w Walltime) Duration() time.Duration {
	if w.Unit == Minutes {
		return time.Duration(w.Amount) * time.Minute
	}
	return time.Duration(w.Amount) * time.Hour
}

func (w Walltime) String() string {
	return fmt.Sprintf("%d %s", w.Amount, w.Unit)
}

// ProgramVersion identifies a Gaussian build as family.revision (e.g. g16.a03).
type ProgramVersion struct {
	Family   string
	Revision string
}

func (v ProgramVersion) String() string {
	if v.Family == "" {
		return ""
	}
	return v.Family + "." + v.Revision
}

// Executable is the program name invoked for this version's family.
func (v ProgramVersion) Executable() string {
	return v.Family
}

// ResourcePlan is the fully resolved set of job parameters.
// It is filled in dependency order by the resolver and is read-only afterwards.
type ResourcePlan struct {
	Generation      string // cluster generation name (ikt, mox)
	Queue           Queue
	Allocation      string // e.g. hyak-chem; empty for the shared backfill queue
	AllocationShort string // allocation with the naming prefix removed (chem)
	NodeCount       int
	CoresPerNode    int
	MemoryGb        int // 0 when the generation does not track memory
	Version         ProgramVersion
	Walltime        Walltime
	InputFile       string // Gaussian input, e.g. water.com
	JobName         string // input stem, e.g. water
	OutputScript    string // e.g. water.pbs
}

// MultiNode is true when the job spans more than one node.
func (p ResourcePlan) MultiNode() bool {
	return p.NodeCount > 1
}

// TotalCores is the number of cores requested across all nodes.
func (p ResourcePlan) TotalCores() int {
	return p.NodeCount * p.CoresPerNode
}
