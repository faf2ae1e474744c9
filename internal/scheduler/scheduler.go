// Package scheduler renders submission scripts for the cluster batch systems.
package scheduler

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/Justype/gaussub/internal/plan"
	"github.com/Justype/gaussub/internal/utils"
	"github.com/spf13/afero"
)

// Dialect names a batch system script dialect.
type Dialect string

const (
	DialectPBS   Dialect = "pbs"   // Torque/Moab (ikt)
	DialectSLURM Dialect = "slurm" // mox
)

// Job is everything a writer needs to render one script.
type Job struct {
	Plan      plan.ResourcePlan
	JobName   string // scheduler job name (input stem)
	WorkDir   string // directory the job runs in and logs to
	InputFile string // Gaussian input as given by the user
}

// NewJob builds a Job from a resolved plan.
func NewJob(p plan.ResourcePlan, workDir string) *Job {
	return &Job{
		Plan:      p,
		JobName:   p.JobName,
		WorkDir:   workDir,
		InputFile: p.InputFile,
	}
}

// inputStem is the input file without its extension.
func (j *Job) inputStem() string {
	return strings.TrimSuffix(j.InputFile, filepath.Ext(j.InputFile))
}

// ScriptWriter renders a submission script in one dialect.
type ScriptWriter interface {
	Dialect() Dialect
	// Extension is the script file extension without the dot.
	Extension() string
	// SubmitCommand is the command that submits the script.
	SubmitCommand() string
	Write(w io.Writer, job *Job) error
}

// CreateScript writes job to path on fs. The script is written to a
// temporary file first and renamed into place, so a failure never leaves
// a partial script behind.
func CreateScript(fs afero.Fs, path string, sw ScriptWriter, job *Job) error {
	tmp := path + ".tmp"
	fail := func(err error) error {
		_ = fs.Remove(tmp)
		return NewScriptCreationError(job.JobName, path, err)
	}

	file, err := fs.Create(tmp)
	if err != nil {
		return NewScriptCreationError(job.JobName, path, err)
	}
	if err := sw.Write(file, job); err != nil {
		file.Close()
		return fail(err)
	}
	if err := file.Close(); err != nil {
		return fail(err)
	}
	if err := fs.Chmod(tmp, utils.PermExec); err != nil {
		return fail(err)
	}
	if err := fs.Rename(tmp, path); err != nil {
		return fail(err)
	}
	utils.PrintDebug("Wrote %s script %s", sw.Dialect(), path)
	return nil
}
