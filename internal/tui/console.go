// Package tui is the interactive console: guided forms for composing
// rule intents and a browser over the live ruleset.
package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"grimm.is/nftadm/internal/nft"
	"grimm.is/nftadm/internal/rule"
	"grimm.is/nftadm/internal/ruleset"
	"grimm.is/nftadm/internal/validation"
)

// Console drives the interactive session.
type Console struct {
	Applier *nft.Applier
	Query   *ruleset.Service
	Out     io.Writer
}

// NewConsole wires a console over the apply and query layers.
func NewConsole(applier *nft.Applier, query *ruleset.Service) *Console {
	return &Console{
		Applier: applier,
		Query:   query,
		Out:     os.Stdout,
	}
}

const (
	menuAdd     = "add"
	menuPreset  = "preset"
	menuBrowse  = "browse"
	menuSearch  = "search"
	menuSummary = "summary"
	menuQuit    = "quit"
)

// Run loops the main menu until the user quits or a form is aborted.
func (c *Console) Run(ctx context.Context) error {
	fmt.Fprintln(c.Out, StyleTitle.Render("nftadm console"))
	fmt.Fprintln(c.Out, StyleSubtitle.Render("managing "+c.Applier.Triple().String()))

	for {
		var choice string
		form := huh.NewForm(huh.NewGroup(
			huh.NewSelect[string]().
				Title("What would you like to do?").
				Options(
					huh.NewOption("Add a rule", menuAdd),
					huh.NewOption("Add a service preset", menuPreset),
					huh.NewOption("Browse rules", menuBrowse),
					huh.NewOption("Search rules", menuSearch),
					huh.NewOption("Ruleset summary", menuSummary),
					huh.NewOption("Quit", menuQuit),
				).
				Value(&choice),
		)).WithTheme(huh.ThemeBase16())

		if err := form.Run(); err != nil {
			return err
		}

		var err error
		switch choice {
		case menuAdd:
			err = c.addRule(ctx)
		case menuPreset:
			err = c.addPreset(ctx)
		case menuBrowse:
			err = c.browseRules(ctx)
		case menuSearch:
			err = c.searchRules(ctx)
		case menuSummary:
			err = c.showSummary(ctx)
		case menuQuit:
			return nil
		}
		if err != nil {
			fmt.Fprintln(c.Out, StyleDeny.Render("error: "+err.Error()))
		}
	}
}

func (c *Console) addRule(ctx context.Context) error {
	var action, protocol string

	form := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title("Action").
			Options(
				huh.NewOption("Allow traffic", string(rule.ActionPermit)),
				huh.NewOption("Deny traffic", string(rule.ActionDeny)),
			).
			Value(&action),
		huh.NewInput().
			Title("Protocol").
			Description("tcp, udp, icmp, ...").
			Validate(validation.ValidateProtocol).
			Value(&protocol),
	)).WithTheme(huh.ThemeBase16())

	if err := form.Run(); err != nil {
		return err
	}

	protocol = strings.ToLower(strings.TrimSpace(protocol))
	intent := rule.Intent{
		Action:   rule.Action(action),
		Protocol: protocol,
	}

	if !rule.IsPortless(protocol) {
		var portRaw, addrRaw string
		form := huh.NewForm(huh.NewGroup(
			huh.NewInput().
				Title("Port").
				Description("single (80), range (8080-8090) or list (80,443)").
				Validate(func(s string) error {
					_, err := rule.ParsePortSpec(s)
					return err
				}).
				Value(&portRaw),
			huh.NewInput().
				Title("Destination address").
				Description("empty for any; IP, range (a-b) or CIDR").
				Validate(func(s string) error {
					_, err := rule.ParseAddressSpec(s)
					return err
				}).
				Value(&addrRaw),
		)).WithTheme(huh.ThemeBase16())

		if err := form.Run(); err != nil {
			return err
		}

		port, err := rule.ParsePortSpec(portRaw)
		if err != nil {
			return err
		}
		addr, err := rule.ParseAddressSpec(addrRaw)
		if err != nil {
			return err
		}
		intent.Port = port
		intent.Address = addr
	}

	if err := rule.CheckProtocolPort(intent.Protocol, intent.Port); err != nil {
		return err
	}
	return c.confirmAndApply(ctx, intent)
}

func (c *Console) addPreset(ctx context.Context) error {
	var name, action string

	opts := make([]huh.Option[string], 0, len(rule.Presets))
	for _, n := range rule.PresetNames() {
		p, _ := rule.LookupPreset(n)
		opts = append(opts, huh.NewOption(fmt.Sprintf("%s (%s)", n, p.Description), n))
	}

	form := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title("Service preset").
			Options(opts...).
			Value(&name),
		huh.NewSelect[string]().
			Title("Action").
			Options(
				huh.NewOption("Allow traffic", string(rule.ActionPermit)),
				huh.NewOption("Deny traffic", string(rule.ActionDeny)),
			).
			Value(&action),
	)).WithTheme(huh.ThemeBase16())

	if err := form.Run(); err != nil {
		return err
	}

	preset, ok := rule.LookupPreset(name)
	if !ok {
		return fmt.Errorf("unknown preset: %s", name)
	}
	return c.confirmAndApply(ctx, rule.Intent{
		Action: rule.Action(action),
		Preset: preset,
	})
}

func (c *Console) confirmAndApply(ctx context.Context, intent rule.Intent) error {
	directives := rule.Synthesize(intent, c.Applier.Triple())

	fmt.Fprintln(c.Out, StyleHeader.Render("Directives to apply"))
	for _, d := range directives {
		fmt.Fprintln(c.Out, StyleDirective.Render(d.String()))
	}

	var confirmed bool
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(fmt.Sprintf("Apply %d directive(s)?", len(directives))).
			Value(&confirmed),
	)).WithTheme(huh.ThemeBase16())

	if err := form.Run(); err != nil {
		return err
	}
	if !confirmed {
		fmt.Fprintln(c.Out, StyleSubtitle.Render("cancelled"))
		return nil
	}

	out := c.Applier.Apply(ctx, directives)
	fmt.Fprintln(c.Out, RenderOutcomeLine(
		fmt.Sprintf("%d/%d directives applied", out.Succeeded, out.Attempted), out.OK()))
	for _, d := range out.Failed {
		fmt.Fprintln(c.Out, StyleDeny.Render("failed: "+d.String()))
	}
	return nil
}

func (c *Console) browseRules(ctx context.Context) error {
	dump, _, err := c.Query.Fetch(ctx)
	if err != nil {
		return err
	}

	recs := c.Query.ListManaged(dump)
	if len(recs) == 0 {
		fmt.Fprintln(c.Out, StyleSubtitle.Render("no rules in the managed chain"))
		return nil
	}

	fmt.Fprintln(c.Out, StyleHeader.Render("Managed rules"))
	for _, r := range recs {
		fmt.Fprintln(c.Out,
			StyleRuleIndex.Render(strconv.Itoa(r.Index)+".")+
				StyleRuleText.Render(r.Description))
	}

	var target string
	opts := []huh.Option[string]{huh.NewOption("Back to menu", "")}
	for _, r := range recs {
		label := fmt.Sprintf("%d. %s", r.Index, r.Description)
		opts = append(opts, huh.NewOption(label, strconv.FormatUint(r.Handle, 10)))
	}

	form := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title("Delete a rule?").
			Options(opts...).
			Value(&target),
	)).WithTheme(huh.ThemeBase16())

	if err := form.Run(); err != nil {
		return err
	}
	if target == "" {
		return nil
	}

	handle, err := strconv.ParseUint(target, 10, 64)
	if err != nil {
		return err
	}

	var confirmed bool
	confirm := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title("Delete rule with handle " + target + "?").
			Value(&confirmed),
	)).WithTheme(huh.ThemeBase16())

	if err := confirm.Run(); err != nil {
		return err
	}
	if !confirmed {
		return nil
	}

	triple := c.Applier.Triple()
	if err := c.Applier.Delete(ctx, triple.Family, triple.Table, triple.Chain, handle); err != nil {
		return err
	}
	fmt.Fprintln(c.Out, StyleAllow.Render("rule deleted"))
	return nil
}

func (c *Console) searchRules(ctx context.Context) error {
	var term string
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Search term").
			Description("a port number or free text").
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("enter a search term")
				}
				return nil
			}).
			Value(&term),
	)).WithTheme(huh.ThemeBase16())

	if err := form.Run(); err != nil {
		return err
	}

	dump, _, err := c.Query.Fetch(ctx)
	if err != nil {
		return err
	}

	term = strings.TrimSpace(term)
	var recs []ruleset.Record
	if port, perr := validation.ParsePortNumber(term); perr == nil {
		recs = c.Query.FindByPort(dump, port, "")
	} else {
		recs = c.Query.SearchText(dump, term)
	}

	if len(recs) == 0 {
		fmt.Fprintln(c.Out, StyleSubtitle.Render("no matching rules"))
		return nil
	}
	fmt.Fprintln(c.Out, StyleHeader.Render(fmt.Sprintf("%d matching rule(s)", len(recs))))
	for _, r := range recs {
		location := fmt.Sprintf("%s %s %s", r.Family, r.Table, r.Chain)
		fmt.Fprintln(c.Out,
			StyleRuleIndex.Render(strconv.Itoa(r.Index)+".")+
				StyleRuleText.Render(r.Description)+
				StyleSubtitle.Render("  ("+location+")"))
	}
	return nil
}

func (c *Console) showSummary(ctx context.Context) error {
	dump, _, err := c.Query.Fetch(ctx)
	if err != nil {
		return err
	}

	sum := c.Query.Summarize(dump)
	fmt.Fprintln(c.Out, StyleCard.Render(fmt.Sprintf(
		"%s\nmanaged rules: %d\nport rules:    %d",
		StyleTitle.Render("Ruleset summary"), sum.ManagedRules, sum.PortRules)))
	return nil
}
