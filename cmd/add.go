package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"grimm.is/nftadm/internal/rule"
	"grimm.is/nftadm/internal/validation"
)

// AddOptions carries the flag values for the add subcommand.
type AddOptions struct {
	ConfigPath string
	Action     string
	Protocol   string
	Port       string
	Address    string
	DryRun     bool
}

// RunAdd synthesizes directives from a single rule intent and applies
// them to the managed chain.
func RunAdd(opts AddOptions) error {
	action, err := rule.ParseAction(opts.Action)
	if err != nil {
		return err
	}

	protocol := strings.ToLower(validation.SanitizeInput(opts.Protocol))
	if err := validation.ValidateProtocol(protocol); err != nil {
		return err
	}

	intent := rule.Intent{Action: action, Protocol: protocol}

	if opts.Port != "" {
		port, err := rule.ParsePortSpec(opts.Port)
		if err != nil {
			return err
		}
		intent.Port = port
	}
	if err := rule.CheckProtocolPort(protocol, intent.Port); err != nil {
		return err
	}

	if opts.Address != "" {
		addr, err := rule.ParseAddressSpec(opts.Address)
		if err != nil {
			return err
		}
		intent.Address = addr
	}

	e, err := loadEnv(opts.ConfigPath)
	if err != nil {
		return err
	}
	defer e.close()

	directives := rule.Synthesize(intent, e.applier.Triple())

	if opts.DryRun {
		for _, d := range directives {
			fmt.Println(d.String())
		}
		return nil
	}

	if err := requireRoot(); err != nil {
		return err
	}
	if err := requireEngine(e.cfg.Engine); err != nil {
		return err
	}

	out := e.applier.Apply(context.Background(), directives)
	fmt.Printf("%d/%d directives applied\n", out.Succeeded, out.Attempted)
	for _, d := range out.Failed {
		fmt.Fprintf(os.Stderr, "failed: %s\n", d.String())
	}
	if !out.OK() {
		return fmt.Errorf("%d directive(s) failed", len(out.Failed))
	}
	return nil
}
