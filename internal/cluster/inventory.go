package cluster

import (
	"bufio"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/Justype/gaussub/internal/config"
	"github.com/Justype/gaussub/internal/utils"
)

// Inventory answers questions about the user and live cluster capacity.
type Inventory interface {
	Groups() ([]string, error)
	MaxNodes(gen Generation, allocation string) (int, error)
	CoreTiers(gen Generation, allocation string) ([]CoreTier, error)
}

// InventoryError represents a failed inventory command
type InventoryError struct {
	Command   string // Command line that was run
	Operation string // What was being queried
	Err       error  // Underlying error
}

func (e *InventoryError) Error() string {
	return fmt.Sprintf("inventory error during %s (%s): %v", e.Operation, e.Command, e.Err)
}

func (e *InventoryError) Unwrap() error {
	return e.Err
}

// Runner executes a command and returns its standard output.
type Runner func(name string, args ...string) ([]byte, error)

func execRunner(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).Output()
}

// ShellInventory queries the cluster through its command-line tools.
type ShellInventory struct {
	Commands config.Commands
	Prefix   string // allocation naming prefix
	Run      Runner
}

// NewShellInventory builds an inventory from the loaded configuration.
func NewShellInventory(cfg config.Config) *ShellInventory {
	return &ShellInventory{
		Commands: cfg.Commands,
		Prefix:   cfg.Allocations.Prefix,
		Run:      execRunner,
	}
}

func (s *ShellInventory) run(operation, name string, args ...string) (string, error) {
	cmdline := strings.TrimSpace(name + " " + strings.Join(args, " "))
	utils.PrintDebug("Executing: %s", utils.StyleCommand(cmdline))
	run := s.Run
	if run == nil {
		run = execRunner
	}
	out, err := run(name, args...)
	if err != nil {
		return "", &InventoryError{Command: cmdline, Operation: operation, Err: err}
	}
	return string(out), nil
}

// Groups returns the Unix groups of the current user.
func (s *ShellInventory) Groups() ([]string, error) {
	out, err := s.run("list groups", s.Commands.Groups, "-Gn")
	if err != nil {
		return nil, err
	}
	return ParseGroups(out), nil
}

// MaxNodes returns how many nodes the allocation owns.
func (s *ShellInventory) MaxNodes(gen Generation, allocation string) (int, error) {
	short := ShortName(allocation, s.Prefix)
	switch gen.Name {
	case Ikt:
		out, err := s.run("count nodes", s.Commands.Nodestate, short)
		if err != nil {
			return 0, err
		}
		return CountNodestateNodes(out), nil
	case Mox:
		out, err := s.run("count nodes", s.Commands.Hyakalloc)
		if err != nil {
			return 0, err
		}
		nodes, _, err := ParseHyakallocSummary(out, short)
		return nodes, err
	}
	return 0, fmt.Errorf("no node inventory for generation %s", gen.Name)
}

// CoreTiers returns the node tiers of the allocation.
func (s *ShellInventory) CoreTiers(gen Generation, allocation string) ([]CoreTier, error) {
	short := ShortName(allocation, s.Prefix)
	switch gen.Name {
	case Ikt:
		out, err := s.run("list node types", s.Commands.Mdiagn, "-t", short)
		if err != nil {
			return nil, err
		}
		return ParseMdiagnTiers(out), nil
	case Mox:
		out, err := s.run("list node types", s.Commands.Hyakalloc, short)
		if err != nil {
			return nil, err
		}
		tiers, err := ParseHyakallocTiers(out)
		if err != nil {
			return nil, err
		}
		// Memory only appears in the summary listing.
		if summary, err := s.run("read node memory", s.Commands.Hyakalloc); err == nil {
			if _, mem, err := ParseHyakallocSummary(summary, short); err == nil {
				for i := range tiers {
					tiers[i].MemoryGb = mem
				}
			}
		}
		return tiers, nil
	}
	return nil, fmt.Errorf("no tier inventory for generation %s", gen.Name)
}

// ParseGroups splits `id -Gn` output.
func ParseGroups(out string) []string {
	return strings.Fields(out)
}

// CountNodestateNodes counts the node rows (n0...) in nodestate output.
func CountNodestateNodes(out string) int {
	count := 0
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		if strings.Contains(scanner.Text(), "n0") {
			count++
		}
	}
	return count
}

// mdiagnCoreCounts are the node sizes reported by mdiagn on ikt.
var mdiagnCoreCounts = []int{8, 12, 16, 28}

// ParseMdiagnTiers counts nodes per core size in `mdiagn -t` output.
// A node row carries its size as ":<cores> ".
func ParseMdiagnTiers(out string) []CoreTier {
	tiers := make([]CoreTier, 0, len(mdiagnCoreCounts))
	lines := strings.Split(out, "\n")
	for _, cores := range mdiagnCoreCounts {
		marker := fmt.Sprintf(":%d ", cores)
		n := 0
		for _, line := range lines {
			if strings.Contains(line, marker) {
				n++
			}
		}
		tiers = append(tiers, CoreTier{Cores: cores, Nodes: n})
	}
	return tiers
}

// ParseHyakallocSummary finds the allocation's row in `hyakalloc` output and
// returns its node count (field 1) and smallest node memory (field 2, "128G").
func ParseHyakallocSummary(out, short string) (nodes int, memoryGb int, err error) {
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 || fields[0] != short {
			continue
		}
		nodes, err = strconv.Atoi(fields[1])
		if err != nil {
			return 0, 0, fmt.Errorf("invalid node count %q for %s: %w", fields[1], short, err)
		}
		mem := strings.TrimRight(fields[2], "Gg")
		memoryGb, err = strconv.Atoi(mem)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid node memory %q for %s: %w", fields[2], short, err)
		}
		return nodes, memoryGb, nil
	}
	return 0, 0, fmt.Errorf("allocation %s not listed by hyakalloc", short)
}

// ParseHyakallocTiers reads the 28-core node count from `hyakalloc <short>`.
// The count is the twelfth whitespace-separated token of the output.
func ParseHyakallocTiers(out string) ([]CoreTier, error) {
	fields := strings.Fields(out)
	if len(fields) < 12 {
		return nil, fmt.Errorf("unexpected hyakalloc output (%d fields)", len(fields))
	}
	n, err := strconv.Atoi(fields[11])
	if err != nil {
		return nil, fmt.Errorf("invalid 28-core node count %q: %w", fields[11], err)
	}
	return []CoreTier{{Cores: 28, Nodes: n}}, nil
}
