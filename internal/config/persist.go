package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// ConfigFilename is the name of the config file
const ConfigFilename = "config"

// ConfigType is the type of config file (yaml, json, toml)
const ConfigType = "yaml"

// InitViper initializes Viper with proper search paths and defaults
// Priority (highest to lowest):
// 1. Command-line flags (handled by cobra)
// 2. Environment variables (GAUSSUB_*)
// 3. User config file (~/.config/gaussub/config.yaml)
// 4. System config file (/etc/gaussub/config.yaml)
// 5. Defaults
func InitViper() error {
	viper.SetConfigName(ConfigFilename)
	viper.SetConfigType(ConfigType)

	if userConfig, err := GetUserConfigPath(); err == nil {
		viper.AddConfigPath(filepath.Dir(userConfig))
	}

	// Home directory fallback
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".gaussub"))
	}

	// System-wide config (lower priority)
	viper.AddConfigPath("/etc/gaussub")

	viper.SetEnvPrefix("GAUSSUB")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()

	setDefaults()

	// Read config file (non-fatal if not found)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}

	return nil
}

// setDefaults sets default values for all config keys
func setDefaults() {
	viper.SetDefault("debug", false)
	viper.SetDefault("generation", "")
	viper.SetDefault("shared_max_nodes", 1000)

	viper.SetDefault("groups.gaussian", "ligroup-gaussian")
	viper.SetDefault("groups.internal", "ligroup-gdv")

	viper.SetDefault("allocations.prefix", "hyak-")
	viper.SetDefault("allocations.exclude", "test")
	viper.SetDefault("allocations.general", "hyak-stf")

	viper.SetDefault("commands.nodestate", "nodestate")
	viper.SetDefault("commands.mdiagn", "mdiagn")
	viper.SetDefault("commands.hyakalloc", "hyakalloc")
	viper.SetDefault("commands.groups", "id")
}

// GetUserConfigPath returns the path to the user config file
func GetUserConfigPath() (string, error) {
	userConfigDir, err := os.UserConfigDir()
	if err != nil {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".gaussub", ConfigFilename+"."+ConfigType), nil
	}

	return filepath.Join(userConfigDir, "gaussub", ConfigFilename+"."+ConfigType), nil
}

// LoadFromViper loads config from Viper into Global struct.
// Empty or non-positive values keep the current Global value.
func LoadFromViper() {
	if viper.GetBool("debug") {
		Global.Debug = true
	}
	if gen := viper.GetString("generation"); gen != "" {
		Global.Generation = gen
	}
	if n := viper.GetInt("shared_max_nodes"); n > 0 {
		Global.SharedMaxNodes = n
	}

	setString(&Global.Groups.Gaussian, "groups.gaussian")
	setString(&Global.Groups.Internal, "groups.internal")

	setString(&Global.Allocations.Prefix, "allocations.prefix")
	setString(&Global.Allocations.Exclude, "allocations.exclude")
	setString(&Global.Allocations.General, "allocations.general")

	setString(&Global.Commands.Nodestate, "commands.nodestate")
	setString(&Global.Commands.Mdiagn, "commands.mdiagn")
	setString(&Global.Commands.Hyakalloc, "commands.hyakalloc")
	setString(&Global.Commands.Groups, "commands.groups")
}

func setString(dest *string, key string) {
	if v := viper.GetString(key); v != "" {
		*dest = v
	}
}

// envKeyReplacer maps nested keys to env names: groups.gaussian → GAUSSUB_GROUPS_GAUSSIAN
var envKeyReplacer = strings.NewReplacer(".", "_")
