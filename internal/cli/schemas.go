package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/deltastate/internal/schema"
)

// SchemaInfo summarizes a catalogue entry.
type SchemaInfo struct {
	Name         string      `json:"name"`
	Version      string      `json:"version"`
	Description  string      `json:"description,omitempty"`
	HistoryDepth int         `json:"history_depth"`
	Fields       []FieldInfo `json:"fields"`
}

// FieldInfo summarizes one delta field.
type FieldInfo struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Width   int    `json:"width"`
	Default uint64 `json:"default_value"`
}

// SchemaIssue is one schema validation failure.
type SchemaIssue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
}

// SchemaValidation is the result of schemas validate.
type SchemaValidation struct {
	Valid   bool          `json:"valid"`
	Files   int           `json:"files"`
	Schemas []string      `json:"schemas"`
	Errors  []SchemaIssue `json:"errors,omitempty"`
}

// NewSchemasCommand creates the schemas command group.
func NewSchemasCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schemas",
		Short: "Inspect and validate domain schemas",
	}
	cmd.AddCommand(newSchemasListCommand(rootOpts))
	cmd.AddCommand(newSchemasValidateCommand(rootOpts))
	return cmd
}

func newSchemasListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the schema catalogue",
		Long: `List every schema in the catalogue: the builtin schemas plus any
loaded from --schemas.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchemasList(rootOpts, cmd)
		},
	}
}

func runSchemasList(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	cat, err := loadCatalog(opts)
	if err != nil {
		return err
	}

	infos := make([]SchemaInfo, 0, cat.Len())
	for _, s := range cat.All() {
		infos = append(infos, describeSchema(s))
	}

	return formatter.Emit(infos, func(w io.Writer) {
		for _, info := range infos {
			fmt.Fprintf(w, "%s (v%s, history %d)\n", info.Name, info.Version, info.HistoryDepth)
			for _, f := range info.Fields {
				fmt.Fprintf(w, "  %-16s %-16s %2d bits\n", f.Name, f.Type, f.Width)
			}
		}
	})
}

func describeSchema(s schema.Schema) SchemaInfo {
	info := SchemaInfo{
		Name:         s.Name(),
		Version:      s.Version,
		Description:  s.Description,
		HistoryDepth: s.HistoryDepth(),
		Fields:       make([]FieldInfo, len(s.Fields)),
	}
	for i, f := range s.Fields {
		info.Fields[i] = FieldInfo{Name: f.Name, Type: string(f.Type), Width: f.Width, Default: f.Default}
	}
	return info
}

func newSchemasValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <dir>",
		Short: "Validate a directory of CUE schemas",
		Long: `Compile every domain schema in a directory and report all errors with
their codes.

Exit codes:
  0 - All schemas valid
  1 - One or more schemas invalid
  2 - Command error (directory missing, no CUE files, CUE syntax errors)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchemasValidate(rootOpts, args[0], cmd)
		},
	}
}

func runSchemasValidate(opts *RootOptions, dir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	result, errs := schema.LoadDir(dir, schema.LoadModeCollectAll)
	if result == nil {
		issue := toIssue(errs[0])
		if err := formatter.Error(issue.Code, issue.Message, nil); err != nil {
			return err
		}
		return WrapExitError(ExitCommandError, "schema validation could not run", errs[0])
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", result.FileCount, dir)

	out := SchemaValidation{
		Valid:   len(errs) == 0,
		Files:   result.FileCount,
		Schemas: make([]string, 0, result.Catalog.Len()),
	}
	for _, s := range result.Catalog.All() {
		out.Schemas = append(out.Schemas, s.Name())
	}
	for _, err := range errs {
		out.Errors = append(out.Errors, toIssue(err))
	}

	if out.Valid {
		return formatter.Emit(out, func(w io.Writer) {
			fmt.Fprintf(w, "✓ %d schema(s) valid: %s\n", len(out.Schemas), strings.Join(out.Schemas, ", "))
		})
	}
	return formatter.Fail("E_SCHEMA_INVALID", fmt.Sprintf("%d schema error(s)", len(out.Errors)), out, func(w io.Writer) {
		for _, issue := range out.Errors {
			if issue.File != "" {
				fmt.Fprintf(w, "✗ [%s] %s:%d: %s\n", issue.Code, issue.File, issue.Line, issue.Message)
			} else {
				fmt.Fprintf(w, "✗ [%s] %s\n", issue.Code, issue.Message)
			}
		}
	})
}

func toIssue(err error) SchemaIssue {
	var le *schema.LoadError
	if !errors.As(err, &le) {
		return SchemaIssue{Code: schema.ErrCodeGeneric, Message: err.Error()}
	}
	issue := SchemaIssue{Code: le.Code, Message: le.Message}
	if le.Pos.IsValid() {
		issue.File = le.Pos.Filename()
		issue.Line = le.Pos.Line()
	}
	return issue
}
