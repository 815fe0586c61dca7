package typbatch

import (
	"regexp"
	"strings"
)

// importPattern matches import and include statements with a literal
// string target. Dynamic targets (expressions) cannot be resolved
// statically and are left to the engine.
var importPattern = regexp.MustCompile(`#(?:import|include)\s+"((?:[^"\\]|\\.)*)"`)

// scanImports statically extracts the import and include targets of a
// source. Package imports ("@ns/name:1.2.3") are skipped: their content
// is versioned and downloaded independently, so they resolve lazily at
// compile time rather than at snapshot-build time.
func scanImports(src *Source) []FileID {
	matches := importPattern.FindAllStringSubmatch(src.Text(), -1)
	if len(matches) == 0 {
		return nil
	}
	ids := make([]FileID, 0, len(matches))
	for _, m := range matches {
		if id, ok := resolveImportPath(m[1], src.ID()); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// resolveImportPath resolves an import target against the importing
// file: rooted paths stand alone, relative paths join the importer's
// directory, package targets are skipped.
func resolveImportPath(target string, current FileID) (FileID, bool) {
	if target == "" || strings.HasPrefix(target, "@") {
		return FileID{}, false
	}
	if strings.HasPrefix(target, "/") {
		pkg, inPkg := current.Package()
		if inPkg {
			return PackageFileID(pkg, target), true
		}
		return NewFileID(target), true
	}
	return current.Join(target), true
}
