// Package brand provides centralized identity constants for the tool.
//
// The identity is loaded from brand.json at compile time via go:embed so
// that scripts and docs generators can read the same file.
package brand

import (
	_ "embed"
	"encoding/json"
	"path/filepath"
)

//go:embed brand.json
var brandJSON []byte

// Brand holds all identity information.
type Brand struct {
	Name             string `json:"name"`
	LowerName        string `json:"lowerName"`
	Description      string `json:"description"`
	BinaryName       string `json:"binaryName"`
	Version          string `json:"version"`
	EngineBinary     string `json:"engineBinary"`
	DefaultConfigDir string `json:"defaultConfigDir"`
	DefaultStateDir  string `json:"defaultStateDir"`
	ConfigFileName   string `json:"configFileName"`
	AuditFileName    string `json:"auditFileName"`
}

var b Brand

func init() {
	if err := json.Unmarshal(brandJSON, &b); err != nil {
		panic("failed to parse brand.json: " + err.Error())
	}

	Name = b.Name
	LowerName = b.LowerName
	Description = b.Description
	BinaryName = b.BinaryName
	Version = b.Version
	EngineBinary = b.EngineBinary
	DefaultConfigDir = b.DefaultConfigDir
	DefaultStateDir = b.DefaultStateDir
	ConfigFileName = b.ConfigFileName
	AuditFileName = b.AuditFileName
}

// Exported variables for convenience.
var (
	Name             string
	LowerName        string
	Description      string
	BinaryName       string
	Version          string
	EngineBinary     string
	DefaultConfigDir string
	DefaultStateDir  string
	ConfigFileName   string
	AuditFileName    string
)

// DefaultConfigPath returns the default configuration file path.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir, ConfigFileName)
}

// DefaultAuditPath returns the default audit database path.
func DefaultAuditPath() string {
	return filepath.Join(DefaultStateDir, AuditFileName)
}
