package cmd

import (
	"grimm.is/confirmd/internal/brand"
	"grimm.is/confirmd/internal/config"
)

// RunInit writes the default configuration to configFile.
func RunInit(configFile string, force bool) error {
	if configFile == "" {
		configFile = brand.DefaultConfigPath()
	}
	if err := config.WriteDefault(configFile, force); err != nil {
		return err
	}
	Printer.Fprintf(Stdout, "Wrote default configuration to %s\n", configFile)
	return nil
}
