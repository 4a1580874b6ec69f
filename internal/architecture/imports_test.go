package architecture_test

import (
	"bufio"
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// Engine packages sit below scheduling and wiring; platform sits below everything.
var boundaries = []struct {
	prefix     string
	disallowed []string
}{
	{"internal/platform/", []string{"personalization", "narrative", "recommend", "report", "trending", "jobs", "temporalx", "app"}},
	{"internal/data/", []string{"personalization", "narrative", "recommend", "report", "trending", "jobs", "temporalx", "app"}},
	{"internal/domain/", []string{"data", "personalization", "narrative", "recommend", "report", "trending", "jobs", "temporalx", "app"}},
	{"internal/personalization/", []string{"narrative", "recommend", "report", "trending", "jobs", "temporalx", "app"}},
	{"internal/narrative/", []string{"data", "recommend", "report", "trending", "jobs", "temporalx", "app"}},
	{"internal/recommend/", []string{"report", "trending", "jobs", "temporalx", "app"}},
	{"internal/report/", []string{"trending", "jobs", "temporalx", "app"}},
	{"internal/trending/", []string{"personalization", "narrative", "recommend", "report", "jobs", "temporalx", "app"}},
	{"internal/jobs/", []string{"temporalx", "app"}},
	{"internal/temporalx/", []string{"app"}},
}

func TestImportBoundaries(t *testing.T) {
	root, modulePath := moduleRoot(t)

	var violations []string
	walkImports(t, root, func(rel, imp string) {
		for _, b := range boundaries {
			if !strings.HasPrefix(rel, b.prefix) {
				continue
			}
			for _, pkg := range b.disallowed {
				bad := modulePath + "/internal/" + pkg
				if imp == bad || strings.HasPrefix(imp, bad+"/") {
					violations = append(violations, fmt.Sprintf("- %s imports %q (disallowed below %s)", rel, imp, b.prefix))
				}
			}
		}
	})

	if len(violations) > 0 {
		t.Fatalf("import boundary violations:\n%s", strings.Join(violations, "\n"))
	}
}

func TestClientsOnlyImportedByPlatformAndApp(t *testing.T) {
	root, modulePath := moduleRoot(t)

	var violations []string
	walkImports(t, root, func(rel, imp string) {
		if !strings.HasPrefix(imp, modulePath+"/internal/clients/") {
			return
		}
		for _, ok := range []string{"internal/clients/", "internal/platform/", "internal/app/"} {
			if strings.HasPrefix(rel, ok) {
				return
			}
		}
		violations = append(violations, fmt.Sprintf("- %s imports %q", rel, imp))
	})

	if len(violations) > 0 {
		t.Fatalf("internal/clients imports outside platform and app (wrap them in internal/platform):\n%s", strings.Join(violations, "\n"))
	}
}

func moduleRoot(t *testing.T) (string, string) {
	t.Helper()
	start, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	root, err := findModuleRoot(start)
	if err != nil {
		t.Fatalf("find module root: %v", err)
	}
	modulePath, err := readModulePath(filepath.Join(root, "go.mod"))
	if err != nil {
		t.Fatalf("read module path: %v", err)
	}
	return root, modulePath
}

// walkImports calls fn for every import of every .go file under internal/ and cmd/.
func walkImports(t *testing.T, root string, fn func(rel, imp string)) {
	t.Helper()
	fset := token.NewFileSet()
	for _, dir := range []string{"internal", "cmd"} {
		err := filepath.WalkDir(filepath.Join(root, dir), func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				switch d.Name() {
				case ".git", "vendor", "node_modules", ".gocache", "_examples":
					return filepath.SkipDir
				default:
					return nil
				}
			}
			if !strings.HasSuffix(path, ".go") {
				return nil
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			rel = filepath.ToSlash(rel)

			f, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
			if err != nil {
				return err
			}
			for _, spec := range f.Imports {
				if spec == nil || spec.Path == nil {
					continue
				}
				imp, err := strconv.Unquote(spec.Path.Value)
				if err != nil {
					continue
				}
				fn(rel, imp)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("walk %s/: %v", dir, err)
		}
	}
}

func findModuleRoot(start string) (string, error) {
	dir := start
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found from %s", start)
		}
		dir = parent
	}
}

func readModulePath(goModPath string) (string, error) {
	f, err := os.Open(goModPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "module ") {
			continue
		}
		mp := strings.TrimSpace(strings.TrimPrefix(line, "module "))
		if mp == "" {
			return "", fmt.Errorf("empty module path in %s", goModPath)
		}
		return mp, nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", fmt.Errorf("module path not found in %s", goModPath)
}
