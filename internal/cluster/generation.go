// Package cluster describes the Hyak cluster generations and queries
// their live capacity.
package cluster

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Justype/gaussub/internal/plan"
	"golang.org/x/mod/semver"
)

// Name identifies a cluster generation.
type Name string

const (
	Ikt Name = "ikt" // Torque/Moab
	Mox Name = "mox" // SLURM
)

// FamilyKind ranks program families by the access they require.
type FamilyKind int

const (
	Stable FamilyKind = iota
	PreRelease
	Internal
)

// Family is a Gaussian program family with its installed revisions.
type Family struct {
	Name      string
	Kind      FamilyKind
	Revisions []string
}

// CoreTier is a class of node sharing one core count.
type CoreTier struct {
	Cores    int
	Nodes    int // nodes of this tier available; 0 means the tier is unusable
	MemoryGb int // smallest node memory in the tier; 0 when unknown
}

// Generation is the per-cluster strategy table. Every generation-dependent
// decision is answered by a field here instead of a branch on the name.
type Generation struct {
	Name          Name
	Dialect       string // "pbs" or "slurm"
	ScriptExt     string
	SubmitCommand string

	FullNodeCores int
	NodeMemoryGb  int
	TracksMemory  bool

	GeneralMaxNodes int
	GeneralTiers    []CoreTier
	SharedTiers     []CoreTier

	Opportunistic plan.Queue
	Families      []Family
}

func ikt() Generation {
	return Generation{
		Name:            Ikt,
		Dialect:         "pbs",
		ScriptExt:       "pbs",
		SubmitCommand:   "qsub",
		FullNodeCores:   16,
		NodeMemoryGb:    64,
		TracksMemory:    false,
		GeneralMaxNodes: 54,
		GeneralTiers:    []CoreTier{{Cores: 16, Nodes: 54}},
		SharedTiers: []CoreTier{
			{Cores: 8, Nodes: 171},
			{Cores: 12, Nodes: 257},
			{Cores: 16, Nodes: 430},
			{Cores: 28, Nodes: 0},
		},
		Opportunistic: plan.QueueBackfill,
		Families: []Family{
			{Name: "g09", Kind: Stable, Revisions: []string{"d01", "e01"}},
			{Name: "g16", Kind: Stable, Revisions: []string{"a03"}},
			{Name: "gdv", Kind: Internal, Revisions: []string{"i03", "i03p", "i04p", "i06", "i06p", "i09"}},
		},
	}
}

func mox() Generation {
	return Generation{
		Name:            Mox,
		Dialect:         "slurm",
		ScriptExt:       "sh",
		SubmitCommand:   "sbatch",
		FullNodeCores:   28,
		NodeMemoryGb:    128,
		TracksMemory:    true,
		GeneralMaxNodes: 40,
		GeneralTiers:    []CoreTier{{Cores: 28, Nodes: 40, MemoryGb: 128}},
		SharedTiers:     []CoreTier{{Cores: 28, Nodes: 208, MemoryGb: 128}},
		Opportunistic:   plan.QueueCheckpoint,
		Families: []Family{
			{Name: "g16", Kind: Stable, Revisions: []string{"a03"}},
			{Name: "gdv", Kind: Internal, Revisions: []string{"i03p", "i04p", "i06p", "i10pp"}},
		},
	}
}

// Names lists the known generations.
func Names() []Name {
	return []Name{Ikt, Mox}
}

// Lookup returns the generation with the given name.
func Lookup(name string) (Generation, error) {
	switch Name(strings.ToLower(strings.TrimSpace(name))) {
	case Ikt:
		return ikt(), nil
	case Mox:
		return mox(), nil
	}
	known := make([]string, 0, len(Names()))
	for _, n := range Names() {
		known = append(known, string(n))
	}
	return Generation{}, plan.NewUsageError("unknown cluster generation %q (expected one of %s)",
		name, strings.Join(known, ", "))
}

// Detect picks the generation from the login node's hostname.
func Detect(hostname string) Generation {
	if strings.Contains(strings.ToLower(hostname), string(Mox)) {
		return mox()
	}
	return ikt()
}

// QueueOptions lists the queue tokens offered on this generation, default first.
func (g Generation) QueueOptions() []string {
	return []string{string(plan.QueueBatch), string(g.Opportunistic)}
}

// MapQueue turns a user token into a queue. Empty means batch, and the other
// generation's opportunistic token is silently remapped to this one's.
func (g Generation) MapQueue(token string) (plan.Queue, error) {
	switch plan.Queue(strings.ToLower(strings.TrimSpace(token))) {
	case "", plan.QueueBatch:
		return plan.QueueBatch, nil
	case plan.QueueBackfill, plan.QueueCheckpoint:
		return g.Opportunistic, nil
	}
	return "", &plan.InvalidQueueError{Token: token, Valid: g.QueueOptions()}
}

// OfferedFamilies returns the families a user may pick, in menu order.
func (g Generation) OfferedFamilies(hasInternal bool) []Family {
	var out []Family
	for _, f := range g.Families {
		if f.Kind == Internal && !hasInternal {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Family returns the named family.
func (g Generation) Family(name string) (Family, bool) {
	for _, f := range g.Families {
		if f.Name == name {
			return f, true
		}
	}
	return Family{}, false
}

// LookupVersion parses "family.revision" against the installed set.
// Access to the family is not checked here.
func (g Generation) LookupVersion(s string) (plan.ProgramVersion, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ".")
	if len(parts) != 2 {
		return plan.ProgramVersion{}, &plan.InvalidVersionError{Requested: s}
	}
	f, ok := g.Family(parts[0])
	if !ok {
		return plan.ProgramVersion{}, &plan.InvalidVersionError{Requested: s}
	}
	for _, r := range f.Revisions {
		if r == parts[1] {
			return plan.ProgramVersion{Family: f.Name, Revision: r}, nil
		}
	}
	return plan.ProgramVersion{}, &plan.InvalidVersionError{Requested: s}
}

// DefaultVersion is the newest revision of the most privileged family the
// user can run. Among equally privileged families the last listed wins.
func (g Generation) DefaultVersion(hasInternal bool) plan.ProgramVersion {
	offered := g.OfferedFamilies(hasInternal)
	if len(offered) == 0 {
		return plan.ProgramVersion{}
	}
	best := offered[0]
	for _, f := range offered[1:] {
		if f.Kind >= best.Kind {
			best = f
		}
	}
	return plan.ProgramVersion{Family: best.Name, Revision: LatestRevision(best.Revisions)}
}

// LatestRevision returns the highest revision by CanonicalRevision order.
func LatestRevision(revs []string) string {
	if len(revs) == 0 {
		return ""
	}
	sorted := append([]string(nil), revs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return semver.Compare(CanonicalRevision(sorted[i]), CanonicalRevision(sorted[j])) < 0
	})
	return sorted[len(sorted)-1]
}

// CanonicalRevision maps a Gaussian revision to a semver string so that
// revisions sort correctly: the letter is the major, the digits the minor
// and each trailing "p" bumps the patch. "i10pp" becomes "v9.10.2".
// Malformed revisions return "", which semver orders below everything.
func CanonicalRevision(rev string) string {
	rev = strings.ToLower(rev)
	if len(rev) < 2 || rev[0] < 'a' || rev[0] > 'z' {
		return ""
	}
	major := int(rev[0]-'a') + 1
	rest := rev[1:]
	i := 0
	minor := 0
	for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
		minor = minor*10 + int(rest[i]-'0')
		i++
	}
	if i == 0 {
		return ""
	}
	patch := 0
	for _, c := range rest[i:] {
		if c != 'p' {
			return ""
		}
		patch++
	}
	v := fmt.Sprintf("v%d.%d.%d", major, minor, patch)
	if !semver.IsValid(v) {
		return ""
	}
	return v
}

// ShortName strips the allocation naming prefix: "hyak-chem" -> "chem".
func ShortName(allocation, prefix string) string {
	return strings.TrimPrefix(allocation, prefix)
}

// SmallestAvailable returns the lowest-core tier with nodes available.
func SmallestAvailable(tiers []CoreTier) (CoreTier, bool) {
	var best CoreTier
	found := false
	for _, t := range tiers {
		if t.Nodes <= 0 {
			continue
		}
		if !found || t.Cores < best.Cores {
			best = t
			found = true
		}
	}
	return best, found
}

// LargestAvailable returns the highest-core tier with nodes available.
func LargestAvailable(tiers []CoreTier) (CoreTier, bool) {
	var best CoreTier
	found := false
	for _, t := range tiers {
		if t.Nodes <= 0 {
			continue
		}
		if !found || t.Cores > best.Cores {
			best = t
			found = true
		}
	}
	return best, found
}

// TierFor returns the smallest available tier with at least cores cores.
func TierFor(tiers []CoreTier, cores int) (CoreTier, bool) {
	var best CoreTier
	found := false
	for _, t := range tiers {
		if t.Nodes <= 0 || t.Cores < cores {
			continue
		}
		if !found || t.Cores < best.Cores {
			best = t
			found = true
		}
	}
	return best, found
}
