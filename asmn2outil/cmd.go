/*
Copyright © 2024 the ASMN2O authors.
This file is part of ASMN2O.

ASMN2O is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

ASMN2O is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with ASMN2O.  If not, see <http://www.gnu.org/licenses/>.
*/

package asmn2outil

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/watermodel/asmn2o"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	Cfg = viper.New()

	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile specifies the path of the CSV results file.`,
			shorthand:  "o",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "HorizonDays",
			usage: `
              HorizonDays overrides the simulated duration in days.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "OutputIntervalDays",
			usage: `
              OutputIntervalDays overrides the spacing of recorded
              snapshots in days.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "ReactorVolume",
			usage: `
              ReactorVolume overrides the reactor liquid volume in m³.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "HoldDO",
			usage: `
              HoldDO freezes dissolved oxygen at its initial value,
              modeling an ideal DO controller.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "StripN2O",
			usage: `
              StripN2O enables N2O gas transfer to the atmosphere.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
	}

	for _, option := range options {
		for _, set := range option.flagsets {
			if set.Lookup(option.name) != nil {
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}

	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(runCmd)
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "asmn2o",
	Short: "An activated-sludge nitrous oxide emissions model.",
	Long: `ASMN2O simulates nitrous oxide production and emission in activated
sludge treatment. Configuration is read from a TOML file given with the
--config flag; individual settings can be overridden with command-line
arguments. Refer to the subcommand documentation for the available
options.`,
	DisableAutoGenTag: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of ASMN2O.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("ASMN2O v%s\n", asmn2o.Version)
	},
	DisableAutoGenTag: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a reactor simulation.",
	Long: `run simulates the reactor described by the configuration file and
writes the requested output variables to a CSV file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgpath := Cfg.GetString("config")
		if cfgpath == "" {
			return fmt.Errorf("asmn2outil: no configuration file; use --config")
		}
		cfg, err := LoadConfig(cfgpath)
		if err != nil {
			return err
		}
		applyOverrides(cfg, Cfg, cmd.Flags())
		log.WithField("config", cfgpath).Info("configuration loaded")
		_, err = Run(cfg)
		return err
	},
	DisableAutoGenTag: true,
}

// applyOverrides copies flag values the user set on the command line
// over the file-based configuration.
func applyOverrides(cfg *SimConfig, v *viper.Viper, flags *pflag.FlagSet) {
	if flags.Changed("OutputFile") {
		cfg.OutputFile = v.GetString("OutputFile")
	}
	if flags.Changed("HorizonDays") {
		cfg.HorizonDays = cast.ToFloat64(v.Get("HorizonDays"))
	}
	if flags.Changed("OutputIntervalDays") {
		cfg.OutputIntervalDays = cast.ToFloat64(v.Get("OutputIntervalDays"))
	}
	if flags.Changed("ReactorVolume") {
		cfg.ReactorVolume = cast.ToFloat64(v.Get("ReactorVolume"))
	}
	if flags.Changed("HoldDO") {
		cfg.HoldDO = v.GetBool("HoldDO")
	}
	if flags.Changed("StripN2O") {
		cfg.StripN2O = v.GetBool("StripN2O")
	}
}
