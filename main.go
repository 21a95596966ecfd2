package main

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "0.3.0"

var (
	configPath string
	logFile    string
	multiInput bool
)

var (
	brand  = color.New(color.FgHiGreen, color.Bold)
	subtle = color.New(color.FgHiBlack)
	info   = color.New(color.FgCyan)
	warn   = color.New(color.FgYellow)
	bad    = color.New(color.FgRed)
)

var rootCmd = &cobra.Command{
	Use:   "nodegraph [file]",
	Short: "nodegraph, a terminal node graph editor",
	Long: brand.Sprint("nodegraph") + " edits attribute connection graphs in the terminal\n" +
		subtle.Sprint("Wire node outputs to inputs and export the resulting mapping"),
	Version:      version,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup(cmd)
		if err != nil {
			return err
		}
		defer log.Sync()

		m := initialModel(cfg, log)
		if len(args) == 1 {
			if err := m.openFile(args[0]); err != nil {
				m.setError(err)
			}
		}

		p := tea.NewProgram(
			m,
			tea.WithAltScreen(),
			tea.WithMouseCellMotion(),
		)
		_, err = p.Run()
		return err
	},
}

func init() {
	rootCmd.SetVersionTemplate("nodegraph {{ .Version }}\n")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default "+defaultConfigPath()+")")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs to this file")
	rootCmd.PersistentFlags().BoolVar(&multiInput, "multi-input", false, "allow several edges into one input")

	rootCmd.AddCommand(
		exportCmd(),
		mappingCmd(),
		configCmd(),
	)
}

// setup loads the configuration, applies flag overrides and opens the log.
func setup(cmd *cobra.Command) (*Config, *zap.Logger, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}
	if cmd.Flags().Changed("multi-input") {
		cfg.MultipleInputAllowed = multiInput
	}
	if logFile != "" {
		cfg.LogFile = expandHome(logFile)
	}
	log, err := newLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
