package config

const VERSION = "1.0.0"

// Groups holds the Unix group names that gate access to Gaussian.
type Groups struct {
	Gaussian string // required to run any Gaussian version
	Internal string // grants the internal (gdv) development family
}

// Allocations describes how compute allocations are named.
type Allocations struct {
	Prefix  string // groups with this prefix denote allocations (e.g. "hyak-")
	Exclude string // groups containing this substring are skipped (e.g. "test")
	General string // organisation-wide allocation (e.g. "hyak-stf")
}

// Commands holds the cluster inventory command names.
type Commands struct {
	Nodestate string
	Mdiagn    string
	Hyakalloc string
	Groups    string
}

// Config holds global application settings
type Config struct {
	Debug      bool
	Version    string
	Generation string // forced generation; empty means detect from hostname

	// SharedMaxNodes is the node ceiling used for queues that are not
	// scoped to an allocation.
	SharedMaxNodes int

	Groups      Groups
	Allocations Allocations
	Commands    Commands
}

// Global holds the singleton configuration instance
var Global Config

// LoadDefaults resets Global to the built-in Hyak settings.
func LoadDefaults() {
	Global = Config{
		Debug:          false,
		Version:        VERSION,
		Generation:     "",
		SharedMaxNodes: 1000,
		Groups: Groups{
			Gaussian: "ligroup-gaussian",
			Internal: "ligroup-gdv",
		},
		Allocations: Allocations{
			Prefix:  "hyak-",
			Exclude: "test",
			General: "hyak-stf",
		},
		Commands: Commands{
			Nodestate: "nodestate",
			Mdiagn:    "mdiagn",
			Hyakalloc: "hyakalloc",
			Groups:    "id",
		},
	}
}
