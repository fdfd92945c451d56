package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// generateConfigDocs generates the configuration reference.
func generateConfigDocs(outDir string) error {
	log.Printf("Generating config docs to %s", outDir)

	// Create output directory
	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := generateConfigurationDoc(outDir); err != nil {
		return fmt.Errorf("failed to generate configuration.md: %w", err)
	}
	log.Printf("  Generated configuration.md")

	return nil
}

// ConfigField represents a configuration field definition.
type ConfigField struct {
	Name        string
	Type        string
	Required    bool
	Default     string
	Description string
	Category    string // "connection", "behavior", "tables"
}

// getConfigSchema returns the configuration schema definition.
// This mirrors internal/config Config.
func getConfigSchema() []ConfigField {
	return []ConfigField{
		// Connection settings
		{Name: "host", Type: "string", Required: true, Default: "127.0.0.1", Description: "Database host; an `external:container` pair picks a half depending on where the tool runs", Category: "connection"},
		{Name: "port", Type: "int", Required: true, Default: "5432", Description: "Database port", Category: "connection"},
		{Name: "database", Type: "string", Required: true, Description: "Database name", Category: "connection"},
		{Name: "user", Type: "string", Required: true, Description: "Database user", Category: "connection"},
		{Name: "password", Type: "string", Description: "Database password; set it here, in `PGSTEWARD_PASSWORD`, or in `.env`", Category: "connection"},

		// Behavior switches
		{Name: "echo", Type: "bool", Default: "false", Description: "Log every SQL statement issued through the ORM face", Category: "behavior"},
		{Name: "safe_mode", Type: "bool", Default: "false", Description: "Refuse destructive operations such as `clear`", Category: "behavior"},
		{Name: "verbose", Type: "bool", Default: "false", Description: "Enable debug logging", Category: "behavior"},

		// Constant tables
		{Name: "const_tables", Type: "[]string", Description: "Tables treated as constant by exact name", Category: "tables"},
		{Name: "const_table_patterns", Type: "[]string", Description: "Regular expressions, matched from the start of the name, that mark further tables as constant", Category: "tables"},
	}
}

// generateConfigurationDoc generates the configuration reference page.
func generateConfigurationDoc(outDir string) error {
	w := NewMarkdownWriter()

	// Frontmatter
	w.Frontmatter("Configuration", "pgsteward configuration reference")
	w.GeneratedMarker()

	// Title and intro
	w.Header(1, "Configuration")
	w.Paragraph("pgsteward merges its configuration from four sources, highest priority first:")
	w.BulletList([]string{
		"command-line flags",
		"environment variables prefixed with " + InlineCode("PGSTEWARD_"),
		"a config file (" + InlineCode("pgsteward.yaml") + " in the working directory, or " + InlineCode("--config") + ")",
		"built-in defaults",
	})
	w.Paragraph("A `.env` file in the working directory is loaded into the process environment before the merge, so it participates at environment-variable priority.")

	fields := getConfigSchema()

	// Connection section
	w.Header(2, "Connection")
	connHeaders := []string{"Field", "Type", "Required", "Default", "Description"}
	var connRows [][]string
	for _, f := range fields {
		if f.Category == "connection" {
			req := "No"
			if f.Required {
				req = "Yes"
			}
			defVal := f.Default
			if defVal == "" {
				defVal = "-"
			}
			connRows = append(connRows, []string{
				InlineCode(f.Name),
				f.Type,
				req,
				defVal,
				f.Description,
			})
		}
	}
	w.Table(connHeaders, connRows)

	w.Paragraph("The password deliberately has no command-line flag. Flags land in shell history and process listings; the environment, `.env`, and the config file do not.")

	// Behavior section
	w.Header(2, "Behavior")
	behaviorHeaders := []string{"Field", "Type", "Default", "Description"}
	var behaviorRows [][]string
	for _, f := range fields {
		if f.Category == "behavior" {
			behaviorRows = append(behaviorRows, []string{
				InlineCode(f.Name),
				f.Type,
				f.Default,
				f.Description,
			})
		}
	}
	w.Table(behaviorHeaders, behaviorRows)

	// Constant tables section
	w.Header(2, "Constant Tables")
	w.Paragraph("Constant tables hold reference data. They are skipped by `clear`, excluded from data dumps unless selected explicitly, and listable via `tables --const`.")

	tableHeaders := []string{"Field", "Type", "Description"}
	var tableRows [][]string
	for _, f := range fields {
		if f.Category == "tables" {
			tableRows = append(tableRows, []string{
				InlineCode(f.Name),
				f.Type,
				f.Description,
			})
		}
	}
	w.Table(tableHeaders, tableRows)

	w.Paragraph("Patterns are anchored at the start of the table name: `users` matches `users` and `users_archive` but not `app_users`.")

	// Example
	w.Header(2, "Example")
	w.CodeBlock("yaml", `host: 127.0.0.1
port: 5432
database: myapp
user: myapp
# password: prefer PGSTEWARD_PASSWORD or .env

safe_mode: false
echo: false

const_tables:
  - config
const_table_patterns:
  - "lookup_.*"`)

	// External dump profile
	w.Header(2, "External Dump Profile")
	w.Paragraph("`dump --external` remembers the last external connection in `~/.pgsteward/external.json`. The file stores host, port, database, and user. The password is asked for on every run and never written to disk.")

	// Write file
	filename := filepath.Join(outDir, "configuration.md")
	return os.WriteFile(filename, w.Bytes(), 0600)
}
