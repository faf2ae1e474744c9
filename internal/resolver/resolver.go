// Package resolver negotiates a ResourcePlan from user answers and
// cluster capacity facts.
package resolver

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Justype/gaussub/internal/cluster"
	"github.com/Justype/gaussub/internal/config"
	"github.com/Justype/gaussub/internal/plan"
	"github.com/Justype/gaussub/internal/prompt"
	"github.com/Justype/gaussub/internal/utils"
)

// OpportunisticMinutes is the walltime that gives opportunistic jobs the
// best scheduling odds.
const OpportunisticMinutes = 260

var errNotInteger = errors.New("not a whole number")

// Options holds the site naming conventions the resolver relies on.
type Options struct {
	GaussianGroup     string // required to run Gaussian at all
	InternalGroup     string // unlocks internal families
	AllocationPrefix  string
	AllocationExclude string
	GeneralAllocation string
	SharedMaxNodes    int
}

// OptionsFromConfig copies the relevant settings out of cfg.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		GaussianGroup:     cfg.Groups.Gaussian,
		InternalGroup:     cfg.Groups.Internal,
		AllocationPrefix:  cfg.Allocations.Prefix,
		AllocationExclude: cfg.Allocations.Exclude,
		GeneralAllocation: cfg.Allocations.General,
		SharedMaxNodes:    cfg.SharedMaxNodes,
	}
}

// Result is a fully resolved plan plus everything the user should be told.
type Result struct {
	Plan       plan.ResourcePlan
	Advisories []string // non-fatal warnings
	Notes      []string // informational reminders
}

// Resolver runs one resolution. It is not reusable.
type Resolver struct {
	gen     cluster.Generation
	inv     cluster.Inventory
	answers prompt.AnswerSource
	opts    Options

	plan        plan.ResourcePlan
	hasInternal bool
	groups      []string
	maxNodes    int
	tier        cluster.CoreTier
	advisories  []string
	notes       []string
}

// New creates a Resolver for one input file.
func New(gen cluster.Generation, inv cluster.Inventory, answers prompt.AnswerSource, opts Options) *Resolver {
	return &Resolver{gen: gen, inv: inv, answers: answers, opts: opts}
}

// Resolve asks every question in dependency order and returns the plan.
// Any failure is a plan.RejectionError and yields a nil Result.
func (r *Resolver) Resolve(inputFile string) (*Result, error) {
	stem, ext, ok := utils.SplitInputName(inputFile)
	if !ok || !utils.IsGaussianExt(ext) {
		return nil, plan.NewUsageError("the input file must be named <name>.com or <name>.gjf, not %s", inputFile)
	}
	r.plan = plan.ResourcePlan{
		Generation: string(r.gen.Name),
		InputFile:  inputFile,
		JobName:    filepath.Base(stem),
	}

	steps := []func() error{
		r.checkAccess,
		r.resolveQueue,
		r.resolveAllocation,
		r.resolveNodeCount,
		r.resolveCores,
		r.resolveMemory,
		r.resolveVersion,
		r.resolveWalltime,
		func() error { return r.resolveOutput(stem) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}

	return &Result{Plan: r.plan, Advisories: r.advisories, Notes: r.notes}, nil
}

func (r *Resolver) advise(format string, a ...interface{}) {
	r.advisories = append(r.advisories, fmt.Sprintf(format, a...))
}

func (r *Resolver) ask(q prompt.Question) (string, error) {
	ans, err := r.answers.Ask(q)
	if err != nil {
		return "", plan.NewAnswerError(string(q.Key), "", err)
	}
	return strings.TrimSpace(ans), nil
}

func (r *Resolver) askInt(q prompt.Question) (int, error) {
	ans, err := r.ask(q)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(ans)
	if err != nil {
		return 0, plan.NewAnswerError(string(q.Key), ans, errNotInteger)
	}
	return n, nil
}

func (r *Resolver) checkAccess() error {
	groups, err := r.inv.Groups()
	if err != nil {
		utils.PrintDebug("Group lookup failed: %v", err)
		groups = nil
	}
	r.groups = groups
	if !contains(groups, r.opts.GaussianGroup) {
		return &plan.AuthorizationError{Group: r.opts.GaussianGroup, Reason: "to use Gaussian"}
	}
	r.hasInternal = r.opts.InternalGroup != "" && contains(groups, r.opts.InternalGroup)
	return nil
}

func (r *Resolver) resolveQueue() error {
	ans, err := r.ask(prompt.Question{
		Key:     prompt.KeyQueue,
		Text:    "Which queue would you like to submit to?",
		Options: r.gen.QueueOptions(),
		Default: string(plan.QueueBatch),
	})
	if err != nil {
		return err
	}
	q, err := r.gen.MapQueue(ans)
	if err != nil {
		return err
	}
	r.plan.Queue = q
	utils.PrintMessage("Using the %s queue", utils.StyleName(string(q)))
	return nil
}

// Candidates filters groups down to the allocations a job may charge.
func Candidates(groups []string, opts Options) []string {
	var out []string
	for _, g := range groups {
		if !strings.HasPrefix(g, opts.AllocationPrefix) {
			continue
		}
		if opts.AllocationExclude != "" && strings.Contains(g, opts.AllocationExclude) {
			continue
		}
		out = append(out, g)
	}
	return out
}

func (r *Resolver) resolveAllocation() error {
	if !r.plan.Queue.AllocationScoped() {
		return nil
	}
	candidates := Candidates(r.groups, r.opts)
	switch len(candidates) {
	case 0:
		return &plan.InvalidAllocationError{}
	case 1:
		r.plan.Allocation = candidates[0]
	default:
		def := candidates[len(candidates)-1]
		if contains(candidates, r.opts.GeneralAllocation) {
			def = r.opts.GeneralAllocation
		}
		ans, err := r.ask(prompt.Question{
			Key:     prompt.KeyAllocation,
			Text:    "Whose allocation would you like to use?",
			Options: candidates,
			Default: def,
		})
		if err != nil {
			return err
		}
		if !contains(candidates, ans) {
			return &plan.InvalidAllocationError{Requested: ans, Available: candidates}
		}
		r.plan.Allocation = ans
	}
	r.plan.AllocationShort = cluster.ShortName(r.plan.Allocation, r.opts.AllocationPrefix)
	utils.PrintMessage("Submitting to the %s allocation", utils.StyleName(r.plan.Allocation))
	return nil
}

func (r *Resolver) isGeneral() bool {
	return r.plan.Allocation != "" && r.plan.Allocation == r.opts.GeneralAllocation
}

func (r *Resolver) lookupMaxNodes() int {
	if r.plan.Queue != plan.QueueBatch {
		return r.opts.SharedMaxNodes
	}
	if r.isGeneral() {
		return r.gen.GeneralMaxNodes
	}
	utils.PrintMessage("Checking how many nodes are in this allocation...")
	n, err := r.inv.MaxNodes(r.gen, r.plan.Allocation)
	if err != nil {
		utils.PrintDebug("Node lookup failed: %v", err)
		return 0
	}
	return n
}

func (r *Resolver) resolveNodeCount() error {
	r.maxNodes = r.lookupMaxNodes()
	n, err := r.askInt(prompt.Question{
		Key:     prompt.KeyNodes,
		Text:    "How many nodes do you want to use?",
		Default: "1",
	})
	if err != nil {
		return err
	}
	if r.maxNodes <= 0 {
		return &plan.NoCapacityError{Allocation: r.plan.Allocation, Resource: "nodes"}
	}
	if n < 1 || n >= r.maxNodes {
		return &plan.NodeRangeError{Requested: n, Max: r.maxNodes}
	}
	r.plan.NodeCount = n
	return nil
}

func (r *Resolver) lookupTiers() []cluster.CoreTier {
	if r.plan.Queue != plan.QueueBatch {
		return append([]cluster.CoreTier(nil), r.gen.SharedTiers...)
	}
	if r.isGeneral() {
		return append([]cluster.CoreTier(nil), r.gen.GeneralTiers...)
	}
	utils.PrintMessage("Checking what types of nodes are in this allocation...")
	tiers, err := r.inv.CoreTiers(r.gen, r.plan.Allocation)
	if err != nil {
		utils.PrintDebug("Tier lookup failed: %v", err)
		return nil
	}
	return tiers
}

func (r *Resolver) resolveCores() error {
	tiers := r.lookupTiers()
	smallest, ok := cluster.SmallestAvailable(tiers)
	if !ok {
		return &plan.NoCapacityError{Allocation: r.plan.Allocation, Resource: "core tiers"}
	}
	req, err := r.askInt(prompt.Question{
		Key:     prompt.KeyCores,
		Text:    "How many cores do you want to use on each node?",
		Default: strconv.Itoa(smallest.Cores),
	})
	if err != nil {
		return err
	}

	tier := smallest
	switch {
	case req < smallest.Cores:
		r.advise("Setting the number of cores to %d, the smallest option in this allocation.", smallest.Cores)
	default:
		t, ok := cluster.TierFor(tiers, req)
		if !ok {
			largest, _ := cluster.LargestAvailable(tiers)
			return &plan.CoreRangeError{Requested: req, Max: largest.Cores}
		}
		if t.Cores != req {
			r.advise("There are no %d-core nodes in this allocation. Rounding up to %d cores.", req, t.Cores)
		}
		tier = t
	}
	r.tier = tier
	r.plan.CoresPerNode = tier.Cores

	if r.plan.NodeCount > tier.Nodes {
		r.plan.NodeCount = tier.Nodes
		r.advise("You requested too many nodes with %d cores. Resetting to the maximum of %d node(s) with %d cores.",
			tier.Cores, tier.Nodes, tier.Cores)
	}
	if r.plan.MultiNode() {
		r.notes = append(r.notes, `You must include "%LindaWorkers" in your input file when using more than one node.`)
	}
	if !r.gen.TracksMemory {
		utils.PrintMessage("Using %s node(s) with %s cores",
			utils.StyleNumber(r.plan.NodeCount), utils.StyleNumber(r.plan.CoresPerNode))
	}
	return nil
}

func (r *Resolver) resolveMemory() error {
	if !r.gen.TracksMemory {
		return nil
	}
	nodeMem := r.tier.MemoryGb
	if nodeMem <= 0 {
		nodeMem = r.gen.NodeMemoryGb
	}
	mem, err := r.askInt(prompt.Question{
		Key:     prompt.KeyMemory,
		Text:    "How much memory (in Gb) do you want to use on each node?",
		Default: strconv.Itoa(nodeMem),
	})
	if err != nil {
		return err
	}
	if mem < 1 || mem > nodeMem {
		return &plan.MemoryRangeError{Requested: mem, Max: nodeMem}
	}
	r.plan.MemoryGb = mem
	utils.PrintMessage("Using %s node(s) with %s cores and %s Gb",
		utils.StyleNumber(r.plan.NodeCount), utils.StyleNumber(r.plan.CoresPerNode), utils.StyleNumber(mem))
	return nil
}

func (r *Resolver) resolveVersion() error {
	var options []string
	for _, f := range r.gen.OfferedFamilies(r.hasInternal) {
		for _, rev := range f.Revisions {
			options = append(options, f.Name+"."+rev)
		}
	}
	ans, err := r.ask(prompt.Question{
		Key:     prompt.KeyVersion,
		Text:    "Which version of Gaussian would you like to use?",
		Options: options,
		Default: r.gen.DefaultVersion(r.hasInternal).String(),
	})
	if err != nil {
		return err
	}
	v, err := r.gen.LookupVersion(ans)
	if err != nil {
		return err
	}
	if f, _ := r.gen.Family(v.Family); f.Kind == cluster.Internal && !r.hasInternal {
		return &plan.AuthorizationError{Group: r.opts.InternalGroup, Reason: "to use " + f.Name + " versions"}
	}
	r.plan.Version = v
	utils.PrintMessage("Using the %s version of Gaussian", utils.StyleName(v.String()))
	return nil
}

func (r *Resolver) resolveWalltime() error {
	unit, def, text := plan.Hours, 1, "For how many hours do you want to run your calculation?"
	if r.plan.Queue.Opportunistic() {
		unit, def, text = plan.Minutes, OpportunisticMinutes, "For how many minutes do you want to run your calculation?"
	}
	amount, err := r.askInt(prompt.Question{
		Key:     prompt.KeyWalltime,
		Text:    text,
		Default: strconv.Itoa(def),
	})
	if err != nil {
		return err
	}
	if amount < 1 {
		return &plan.WalltimeRangeError{Requested: amount, Unit: unit}
	}
	if r.plan.Queue.Opportunistic() && amount != OpportunisticMinutes {
		r.advise("You want to specify %d min when using the %s queue if you expect your job to run longer than 4 hrs. This is just a warning.",
			OpportunisticMinutes, r.plan.Queue)
	}
	r.plan.Walltime = plan.Walltime{Amount: amount, Unit: unit}
	utils.PrintMessage("Running the calculation for %s", utils.StyleNumber(r.plan.Walltime))
	return nil
}

func (r *Resolver) resolveOutput(stem string) error {
	ext := "." + r.gen.ScriptExt
	ans, err := r.ask(prompt.Question{
		Key:     prompt.KeyOutput,
		Text:    fmt.Sprintf("What should the %s script be named?", ext),
		Default: stem + ext,
	})
	if err != nil {
		return err
	}
	name := strings.TrimSuffix(ans, ext)
	if name == "" {
		name = stem
	}
	r.plan.OutputScript = name + ext
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
