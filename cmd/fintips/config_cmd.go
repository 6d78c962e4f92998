package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/waqaskhan137/fintips/config"
)

var flagForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	RunE:  runConfigInit,
}

func init() {
	configInitCmd.Flags().BoolVar(&flagForce, "force", false, "Overwrite an existing config file")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	printConfig(cmd.OutOrStdout(), configPath(), config.Exists(configPath()), cfg)
	return nil
}

func printConfig(w io.Writer, path string, exists bool, cfg config.Config) {
	fmt.Fprintf(w, "  Config file: %s\n", path)
	if exists {
		fmt.Fprintln(w, "  Status: loaded")
	} else {
		fmt.Fprintln(w, "  Status: using defaults (no config file)")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "  [Server]")
	fmt.Fprintf(w, "    Address:    %s\n", cfg.Server.Addr)
	fmt.Fprintf(w, "    Mode:       %s\n", cfg.Server.Mode)
	if cfg.Server.CacheTTLSeconds > 0 {
		fmt.Fprintf(w, "    Cache:      %d entries, %s\n", cfg.Server.CacheMaxEntries, cfg.Server.CacheTTL())
	} else {
		fmt.Fprintln(w, "    Cache:      disabled")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "  [LLM]")
	fmt.Fprintf(w, "    Provider:   %s\n", cfg.LLM.Provider)
	if cfg.LLM.Model != "" {
		fmt.Fprintf(w, "    Model:      %s\n", cfg.LLM.Model)
	} else {
		fmt.Fprintln(w, "    Model:      provider default")
	}
	if cfg.LLM.BaseURL != "" {
		fmt.Fprintf(w, "    Base URL:   %s\n", cfg.LLM.BaseURL)
	}
	if cfg.LLM.APIKey != "" {
		fmt.Fprintf(w, "    API key:    %s\n", maskAPIKey(cfg.LLM.APIKey))
	} else {
		fmt.Fprintln(w, "    API key:    not configured")
	}
	fmt.Fprintf(w, "    Max turns:  %d\n", cfg.LLM.MaxTurns)
	fmt.Fprintf(w, "    Timeout:    %s\n", cfg.LLM.Timeout())
	fmt.Fprintln(w)

	fmt.Fprintln(w, "  [Analyzer]")
	fmt.Fprintf(w, "    Mode:       %s\n", cfg.Analyzer.Mode)
	if cfg.Analyzer.Mode == "remote" {
		fmt.Fprintf(w, "    Base URL:   %s\n", cfg.Analyzer.BaseURL)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "  [Log]")
	fmt.Fprintf(w, "    Level:      %s\n", cfg.Log.Level)
	fmt.Fprintf(w, "    Format:     %s\n", cfg.Log.Format)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "  Run `fintips config init` to write a config file.")
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	path := configPath()
	if config.Exists(path) && !flagForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := config.Save(path, config.DefaultConfig()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "  Wrote %s\n", path)
	return nil
}
