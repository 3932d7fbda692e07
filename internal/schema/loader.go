package schema

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"
)

// LoadMode controls how errors are handled during schema loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// Error codes shared with the CLI.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed

	ErrCodeCatalogue   = "E101" // Missing or invalid catalogue entry
	ErrCodeDeltaFields = "E102" // No delta fields defined
	ErrCodeFieldWidth  = "E103" // Invalid field width
	ErrCodeFieldType   = "E104" // Invalid field type or default value
	ErrCodeOperations  = "E105" // Missing accumulate or bad rollback config
	ErrCodeDuplicate   = "E106" // Duplicate namespace
)

// LoadResult contains the schemas loaded from a directory.
type LoadResult struct {
	Catalog   *Catalog
	FileCount int
}

// LoadError represents an error that occurred during schema loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadDir loads every `domain: <Name>: {...}` entry from the CUE package in dir.
// In LoadModeFailFast it returns on the first error; in LoadModeCollectAll it
// keeps compiling and returns every error alongside what did compile.
func LoadDir(dir string, mode LoadMode) (*LoadResult, []error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("schema directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing schema directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(cueFiles) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}}
	}

	result := &LoadResult{
		Catalog:   &Catalog{byName: make(map[string]Schema)},
		FileCount: len(cueFiles),
	}
	errs := compileDomains(value, result.Catalog, mode)

	if result.Catalog.Len() == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeGeneric, Message: "no domain schemas found"})
	}
	return result, errs
}

// compileDomains compiles every field under the top-level `domain` struct of v
// into cat.
func compileDomains(v cue.Value, cat *Catalog, mode LoadMode) []error {
	var errs []error

	domains := v.LookupPath(cue.ParsePath("domain"))
	if !domains.Exists() {
		return nil
	}

	iter, err := domains.Fields()
	if err != nil {
		return []error{&LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("iterating domains: %v", err)}}
	}

	for iter.Next() {
		s, err := Compile(iter.Value())
		if err != nil {
			errs = append(errs, convertCompileError(err, "domain."+iter.Label()))
			if mode == LoadModeFailFast {
				return errs
			}
			continue
		}
		if err := cat.Add(*s); err != nil {
			errs = append(errs, &LoadError{Code: ErrCodeDuplicate, Message: err.Error(), Pos: iter.Value().Pos()})
			if mode == LoadModeFailFast {
				return errs
			}
		}
	}
	return errs
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// convertCompileError converts a compile error to a LoadError with position info.
func convertCompileError(err error, context string) *LoadError {
	var compileErr *CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: fmt.Sprintf("%s: %s", context, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeGeneric,
		Message: fmt.Sprintf("%s: %v", context, err),
	}
}

// MapFieldToErrorCode maps a compile error field to an error code.
func MapFieldToErrorCode(field string) string {
	switch field {
	case "catalogue", "catalogue.vertical", "catalogue.field", "catalogue.object", "catalogue.version":
		return ErrCodeCatalogue
	case "delta_fields":
		return ErrCodeDeltaFields
	case "delta_fields.width":
		return ErrCodeFieldWidth
	case "delta_fields.type", "delta_fields.default_value":
		return ErrCodeFieldType
	case "operations.accumulate", "operations.rollback":
		return ErrCodeOperations
	default:
		return ErrCodeGeneric
	}
}
