package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"nodegraph/internal/nodegraph"
)

// loadScene opens a saved graph without a terminal attached.
func loadScene(cfg *Config, log *zap.Logger, path string) (*nodegraph.Scene, *Canvas, error) {
	d, err := loadDocument(path)
	if err != nil {
		return nil, nil, err
	}
	canvas := NewCanvas(cfg.CellWidth, cfg.CellHeight)
	s := newScene(cfg, canvas, log)
	if err := d.restore(s); err != nil {
		warn.Printf("  %s: %v\n", filepath.Base(path), err)
	}
	return s, canvas, nil
}

func exportCmd() *cobra.Command {
	var (
		pngPath string
		txtPath string
		columns int
		rows    int
	)
	cmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Render a saved graph to PNG or plain text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if pngPath == "" && txtPath == "" {
				return errors.New("nothing to do, pass --png and/or --txt")
			}
			cfg, log, err := setup(cmd)
			if err != nil {
				return err
			}
			defer log.Sync()

			s, canvas, err := loadScene(cfg, log, args[0])
			if err != nil {
				return err
			}

			if pngPath != "" {
				if err := exportPNG(s, pngPath); err != nil {
					return err
				}
				brand.Print("  exported ")
				fmt.Println(pngPath)
			}
			if txtPath != "" {
				view := nodegraph.NewView(s, float64(columns)*cfg.CellWidth, float64(rows)*cfg.CellHeight,
					nodegraph.ViewOptions{Zoom: true, Movable: true})
				view.FitView(false, nodegraph.DefaultPadding)
				if err := exportVisualTXT(txtPath, canvas.Render(view, columns, rows, false)); err != nil {
					return err
				}
				brand.Print("  exported ")
				fmt.Println(txtPath)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&pngPath, "png", "", "write a PNG image to this path")
	cmd.Flags().StringVar(&txtPath, "txt", "", "write a text rendering to this path")
	cmd.Flags().IntVar(&columns, "columns", 120, "text rendering width in cells")
	cmd.Flags().IntVar(&rows, "rows", 40, "text rendering height in cells")
	return cmd
}

func mappingCmd() *cobra.Command {
	var (
		targetName string
		asYAML     bool
	)
	cmd := &cobra.Command{
		Use:   "mapping FILE",
		Short: "Print the connection mapping of a saved graph",
		Long: "Print the source to target attribute mapping of the graph's target node.\n" +
			"The target is the pinned node, the last connected one, or --target.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(cmd)
			if err != nil {
				return err
			}
			defer log.Sync()

			s, _, err := loadScene(cfg, log, args[0])
			if err != nil {
				return err
			}

			var target *nodegraph.Node
			if targetName != "" {
				target = s.NodeByName(targetName)
				if target == nil {
					return fmt.Errorf("no node named %q", targetName)
				}
			} else {
				target = s.TargetNode()
			}
			if target == nil {
				subtle.Println("  graph has no target node")
				return nil
			}

			mapping := s.GetConnections(target.ID())
			if asYAML {
				text, err := mappingYAML(mapping)
				if err != nil {
					return err
				}
				fmt.Print(text)
				return nil
			}
			printMapping(target.Name(), mapping)
			return nil
		},
	}
	cmd.Flags().StringVar(&targetName, "target", "", "node whose inputs are mapped")
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print YAML instead of a listing")
	return cmd
}

func printMapping(target string, mapping nodegraph.Mapping) {
	fmt.Printf("  %s %s\n\n", brand.Sprint("mapping into"), target)
	if mapping.Len() == 0 {
		subtle.Println("  no connections")
		return
	}
	width := 0
	for _, source := range mapping.Sources() {
		if len(source) > width {
			width = len(source)
		}
	}
	for _, source := range mapping.Sources() {
		var names []string
		for _, t := range mapping.Targets(source) {
			name := t.Name
			if t.Invert {
				name = bad.Sprint("-" + name)
			}
			names = append(names, name)
		}
		fmt.Printf("  %s  %s %s\n", info.Sprintf("%-*s", width, source), subtle.Sprint("->"), strings.Join(names, ", "))
	}
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or initialize the configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			path := configPath
			if path == "" {
				path = defaultConfigPath()
			}
			fmt.Printf("  %s %s\n\n", brand.Sprint("config"), path)
			row := func(name string, value any) {
				fmt.Printf("  %s  %v\n", info.Sprintf("%-24s", name), value)
			}
			row("save_directory", cfg.SaveDirectory)
			row("confirmations", cfg.Confirmations)
			row("multiple_input_allowed", cfg.MultipleInputAllowed)
			row("translate_names", cfg.TranslateNames)
			row("cell_width", cfg.CellWidth)
			row("cell_height", cfg.CellHeight)
			row("log_file", cfg.LogFile)
			row("log_level", cfg.LogLevel)
			for _, pair := range cfg.Exclusive {
				row("exclusive", pair.Source+" -> "+pair.Target)
			}
			return nil
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write the default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath
			if path == "" {
				path = defaultConfigPath()
			}
			if err := saveConfig(defaultConfig(), path); err != nil {
				return err
			}
			brand.Print("  wrote ")
			fmt.Println(path)
			return nil
		},
	})
	return cmd
}
