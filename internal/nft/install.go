package nft

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"grimm.is/nftadm/internal/logging"
)

// installTimeout bounds a single package-manager invocation. Package
// downloads legitimately take longer than engine calls.
const installTimeout = 5 * time.Minute

// Distro families we know how to install the engine on.
const (
	DistroDebian  = "debian"
	DistroRHEL    = "rhel"
	DistroArch    = "arch"
	DistroSUSE    = "suse"
	DistroAlpine  = "alpine"
	DistroUnknown = "unknown"
)

// osReleasePath is a variable so tests can point it at a fixture.
var osReleasePath = "/etc/os-release"

// DetectDistro classifies the running distribution into a package
// manager family, reading /etc/os-release and falling back to probing
// for the package managers themselves.
func DetectDistro(ctx context.Context, runner Runner) string {
	if data, err := os.ReadFile(osReleasePath); err == nil {
		if family := distroFromOSRelease(string(data)); family != DistroUnknown {
			return family
		}
	}

	probes := []struct {
		binary string
		family string
	}{
		{"apt-get", DistroDebian},
		{"yum", DistroRHEL},
		{"dnf", DistroRHEL},
		{"pacman", DistroArch},
	}
	for _, p := range probes {
		res, err := runner.Run(ctx, "which", p.binary)
		if err == nil && res.ExitCode == 0 {
			return p.family
		}
	}
	return DistroUnknown
}

func distroFromOSRelease(content string) string {
	for _, line := range strings.Split(content, "\n") {
		if !strings.HasPrefix(line, "ID=") {
			continue
		}
		id := strings.ToLower(strings.Trim(strings.TrimPrefix(line, "ID="), `"`))
		switch {
		case strings.Contains(id, "ubuntu"), strings.Contains(id, "debian"):
			return DistroDebian
		case strings.Contains(id, "centos"), strings.Contains(id, "rhel"),
			strings.Contains(id, "fedora"), strings.Contains(id, "rocky"),
			strings.Contains(id, "alma"):
			return DistroRHEL
		case strings.Contains(id, "arch"):
			return DistroArch
		case strings.Contains(id, "opensuse"), strings.Contains(id, "suse"):
			return DistroSUSE
		case strings.Contains(id, "alpine"):
			return DistroAlpine
		}
	}
	return DistroUnknown
}

// installCommands maps a distro family to the package-manager argv
// sequences that install the engine. RHEL lists yum then dnf; the
// installer moves to the next command when the first is absent.
var installCommands = map[string][][]string{
	DistroDebian: {
		{"apt-get", "update"},
		{"apt-get", "install", "-y", "nftables"},
	},
	DistroRHEL: {
		{"yum", "install", "-y", "nftables"},
		{"dnf", "install", "-y", "nftables"},
	},
	DistroArch: {
		{"pacman", "-Sy", "--noconfirm", "nftables"},
	},
	DistroSUSE: {
		{"zypper", "install", "-y", "nftables"},
	},
	DistroAlpine: {
		{"apk", "add", "nftables"},
	},
}

// InstallEngine installs nftables through the distro's package manager.
// It is only ever invoked from the explicit setup step, never from the
// apply path.
func InstallEngine(ctx context.Context, runner Runner, log *logging.Logger) error {
	if _, err := Detect(""); err == nil {
		return nil
	}

	family := DetectDistro(ctx, runner)
	if family == DistroUnknown {
		return fmt.Errorf("%w: unsupported distribution, install nftables manually", ErrEngineMissing)
	}
	log.Info("installing nftables", "distro", family)

	var lastErr error
	for _, argv := range installCommands[family] {
		cmdCtx, cancel := context.WithTimeout(ctx, installTimeout)
		res, err := runner.Run(cmdCtx, argv[0], argv[1:]...)
		cancel()

		if err != nil {
			lastErr = err
			continue
		}
		if res.ExitCode != 0 {
			lastErr = fmt.Errorf("%s failed: %s", argv[0], strings.TrimSpace(res.Stderr))
			log.Warn("install command failed", "command", strings.Join(argv, " "), "stderr", strings.TrimSpace(res.Stderr))
			continue
		}
	}

	// Detection decides the outcome: the RHEL list holds alternatives,
	// so a failed command is fine as long as one of them delivered.
	if _, err := Detect(""); err != nil {
		if lastErr != nil {
			return fmt.Errorf("install nftables: %w", lastErr)
		}
		return fmt.Errorf("install completed but engine still missing: %w", err)
	}
	log.Info("nftables installed")
	return nil
}
