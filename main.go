package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"grimm.is/nftadm/cmd"
	"grimm.is/nftadm/internal/brand"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	defaultConfig := brand.DefaultConfigPath()

	switch os.Args[1] {
	case "add":
		addFlags := flag.NewFlagSet("add", flag.ExitOnError)
		configFile := addFlags.String("config", defaultConfig, "Configuration file")
		addFlags.StringVar(configFile, "c", defaultConfig, "Configuration file (short)")

		action := addFlags.String("action", "allow", "Rule action: allow or deny")
		addFlags.StringVar(action, "a", "allow", "Rule action (short)")

		protocol := addFlags.String("protocol", "", "Protocol: tcp, udp, icmp, ...")
		addFlags.StringVar(protocol, "p", "", "Protocol (short)")

		port := addFlags.String("port", "", "Port: single (80), range (8080-8090) or list (80,443)")
		address := addFlags.String("address", "", "Destination address: IP, range (a-b) or CIDR")

		dryRun := addFlags.Bool("dry-run", false, "Print directives without applying")
		addFlags.BoolVar(dryRun, "n", false, "Dry run (short)")

		addFlags.Parse(os.Args[2:])

		fail(cmd.RunAdd(cmd.AddOptions{
			ConfigPath: *configFile,
			Action:     *action,
			Protocol:   *protocol,
			Port:       *port,
			Address:    *address,
			DryRun:     *dryRun,
		}))

	case "preset":
		if len(os.Args) > 2 && os.Args[2] == "list" {
			fail(cmd.RunPresetList())
			return
		}

		presetFlags := flag.NewFlagSet("preset", flag.ExitOnError)
		configFile := presetFlags.String("config", defaultConfig, "Configuration file")
		presetFlags.StringVar(configFile, "c", defaultConfig, "Configuration file (short)")

		action := presetFlags.String("action", "allow", "Rule action: allow or deny")
		presetFlags.StringVar(action, "a", "allow", "Rule action (short)")

		presetFlags.Parse(os.Args[2:])
		if presetFlags.NArg() < 1 {
			fmt.Fprintln(os.Stderr, "Usage: nftadm preset [options] <name>")
			fmt.Fprintln(os.Stderr, "       nftadm preset list")
			os.Exit(1)
		}

		fail(cmd.RunPreset(*configFile, presetFlags.Arg(0), *action))

	case "rules":
		rulesFlags := flag.NewFlagSet("rules", flag.ExitOnError)
		configFile := rulesFlags.String("config", defaultConfig, "Configuration file")
		rulesFlags.StringVar(configFile, "c", defaultConfig, "Configuration file (short)")

		all := rulesFlags.Bool("all", false, "List every rule, not just the managed chain")
		rulesFlags.BoolVar(all, "A", false, "List every rule (short)")

		rulesFlags.Parse(os.Args[2:])
		fail(cmd.RunRules(*configFile, *all))

	case "search":
		searchFlags := flag.NewFlagSet("search", flag.ExitOnError)
		configFile := searchFlags.String("config", defaultConfig, "Configuration file")
		searchFlags.StringVar(configFile, "c", defaultConfig, "Configuration file (short)")

		searchFlags.Parse(os.Args[2:])
		if searchFlags.NArg() < 1 {
			fmt.Fprintln(os.Stderr, "Usage: nftadm search [options] <port|text>")
			os.Exit(1)
		}

		fail(cmd.RunSearch(*configFile, searchFlags.Arg(0)))

	case "summary":
		summaryFlags := flag.NewFlagSet("summary", flag.ExitOnError)
		configFile := summaryFlags.String("config", defaultConfig, "Configuration file")
		summaryFlags.StringVar(configFile, "c", defaultConfig, "Configuration file (short)")

		summaryFlags.Parse(os.Args[2:])
		fail(cmd.RunSummary(*configFile))

	case "delete":
		deleteFlags := flag.NewFlagSet("delete", flag.ExitOnError)
		configFile := deleteFlags.String("config", defaultConfig, "Configuration file")
		deleteFlags.StringVar(configFile, "c", defaultConfig, "Configuration file (short)")

		byHandle := deleteFlags.Bool("handle", false, "Treat the argument as an engine handle, not a listing index")

		deleteFlags.Parse(os.Args[2:])
		if deleteFlags.NArg() < 1 {
			fmt.Fprintln(os.Stderr, "Usage: nftadm delete [options] <index>")
			os.Exit(1)
		}

		fail(cmd.RunDelete(*configFile, deleteFlags.Arg(0), *byHandle))

	case "export":
		exportFlags := flag.NewFlagSet("export", flag.ExitOnError)
		configFile := exportFlags.String("config", defaultConfig, "Configuration file")
		exportFlags.StringVar(configFile, "c", defaultConfig, "Configuration file (short)")

		dir := exportFlags.String("dir", ".", "Directory to write the backup into")
		exportFlags.StringVar(dir, "d", ".", "Directory (short)")

		exportFlags.Parse(os.Args[2:])
		fail(cmd.RunExport(*configFile, *dir))

	case "init":
		initFlags := flag.NewFlagSet("init", flag.ExitOnError)
		configFile := initFlags.String("config", defaultConfig, "Configuration file")
		initFlags.StringVar(configFile, "c", defaultConfig, "Configuration file (short)")

		initFlags.Parse(os.Args[2:])
		fail(cmd.RunInit(*configFile))

	case "provision":
		provisionFlags := flag.NewFlagSet("provision", flag.ExitOnError)
		configFile := provisionFlags.String("config", defaultConfig, "Configuration file")
		provisionFlags.StringVar(configFile, "c", defaultConfig, "Configuration file (short)")

		provisionFlags.Parse(os.Args[2:])
		fail(cmd.RunProvision(*configFile))

	case "setup":
		setupFlags := flag.NewFlagSet("setup", flag.ExitOnError)
		configFile := setupFlags.String("config", defaultConfig, "Configuration file")
		setupFlags.StringVar(configFile, "c", defaultConfig, "Configuration file (short)")

		assumeYes := setupFlags.Bool("yes", false, "Install the engine without prompting")
		setupFlags.BoolVar(assumeYes, "y", false, "Assume yes (short)")

		setupFlags.Parse(os.Args[2:])
		fail(cmd.RunSetup(*configFile, *assumeYes))

	case "console":
		consoleFlags := flag.NewFlagSet("console", flag.ExitOnError)
		configFile := consoleFlags.String("config", defaultConfig, "Configuration file")
		consoleFlags.StringVar(configFile, "c", defaultConfig, "Configuration file (short)")

		consoleFlags.Parse(os.Args[2:])
		fail(cmd.RunConsole(*configFile))

	case "audit":
		if len(os.Args) > 2 && os.Args[2] == "prune" {
			pruneFlags := flag.NewFlagSet("audit prune", flag.ExitOnError)
			configFile := pruneFlags.String("config", defaultConfig, "Configuration file")
			pruneFlags.StringVar(configFile, "c", defaultConfig, "Configuration file (short)")
			pruneFlags.Parse(os.Args[3:])
			fail(cmd.RunAuditPrune(*configFile))
			return
		}

		auditFlags := flag.NewFlagSet("audit", flag.ExitOnError)
		configFile := auditFlags.String("config", defaultConfig, "Configuration file")
		auditFlags.StringVar(configFile, "c", defaultConfig, "Configuration file (short)")

		action := auditFlags.String("action", "", "Filter by action (apply, delete, ...)")
		limit := auditFlags.Int("limit", 50, "Maximum events to show")
		auditFlags.IntVar(limit, "n", 50, "Maximum events (short)")
		since := auditFlags.Duration("since", 30*24*time.Hour, "Look-back window")

		auditFlags.Parse(os.Args[2:])
		fail(cmd.RunAudit(*configFile, *action, *limit, *since))

	case "version":
		fmt.Printf("%s %s\n", brand.LowerName, brand.Version)

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func fail(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`%s - %s

Usage:
  %s <command> [options]

Rule Commands:
  add        Add a filtering rule
             Options: --action (-a) allow|deny, --protocol (-p), --port,
                      --address, --dry-run (-n)
  preset     Apply a service preset (web, ssh, mail, database, ftp, dns)
             Subcommand: list
  delete     Remove a rule by listing index
             Options: --handle (address by engine handle)

Inspection Commands:
  rules      List rules in the managed chain
             Options: --all (-A)
  search     Find rules by port number or free text
  summary    Show rule counts
  export     Save the raw ruleset dump to a file
             Options: --dir (-d)
  audit      Show the mutation audit trail
             Options: --action, --limit (-n), --since
             Subcommand: prune

Setup Commands:
  init       Write the default configuration file
  provision  Create the managed table and chains
  setup      Install the engine if needed, then provision
             Options: --yes (-y)
  console    Interactive console

Examples:
  %s add -a allow -p tcp --port 8080-8090
  %s preset dns -a deny
  %s rules
  %s search 22
  %s delete 3

Most commands accept --config (-c) <file>; default %s
`,
		brand.Name, brand.Description,
		brand.LowerName,
		brand.LowerName, brand.LowerName, brand.LowerName, brand.LowerName, brand.LowerName,
		brand.DefaultConfigPath())
}
