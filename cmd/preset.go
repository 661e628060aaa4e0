package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"grimm.is/nftadm/internal/rule"
)

// RunPreset applies a named service preset with the given action.
func RunPreset(configPath, name, action string) error {
	act, err := rule.ParseAction(action)
	if err != nil {
		return err
	}

	preset, ok := rule.LookupPreset(name)
	if !ok {
		return fmt.Errorf("unknown preset %q (available: %s)",
			name, strings.Join(rule.PresetNames(), ", "))
	}

	e, err := loadEnv(configPath)
	if err != nil {
		return err
	}
	defer e.close()

	if err := requireRoot(); err != nil {
		return err
	}
	if err := requireEngine(e.cfg.Engine); err != nil {
		return err
	}

	directives := rule.Synthesize(rule.Intent{Action: act, Preset: preset}, e.applier.Triple())

	out := e.applier.Apply(context.Background(), directives)
	fmt.Printf("%s: %d/%d directives applied\n", preset.Name, out.Succeeded, out.Attempted)
	for _, d := range out.Failed {
		fmt.Fprintf(os.Stderr, "failed: %s\n", d.String())
	}
	if !out.OK() {
		return fmt.Errorf("%d directive(s) failed", len(out.Failed))
	}
	return nil
}

// RunPresetList prints the preset catalog.
func RunPresetList() error {
	for _, name := range rule.PresetNames() {
		p, _ := rule.LookupPreset(name)
		fmt.Printf("%-10s %-8s %-20s %s\n", p.Name, p.Protocol, portList(p.Ports), p.Description)
	}
	return nil
}

func portList(ports []uint16) string {
	parts := make([]string, len(ports))
	for i, p := range ports {
		parts[i] = fmt.Sprintf("%d", p)
	}
	return strings.Join(parts, ",")
}
