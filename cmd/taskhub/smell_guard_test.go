package main

import (
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"taskhub/internal/config"
)

const defaultMaxCmdConstructorLines = 100

// commandPaths lists every command the CLI must expose.
var commandPaths = []string{
	"login", "logout", "whoami", "srv", "migrate",
	"config path", "config get", "config set",
	"user create", "user list", "user show", "user update", "user delete", "user passwd",
	"task create", "task show", "task list", "task update", "task delete", "task toggle", "task stats",
	"task assign", "task share", "task unshare", "task watch", "task unwatch",
	"comment add", "comment list", "comment edit", "comment delete", "comment resolve",
	"feed", "notifications read", "notifications read-all",
}

func TestRootCommandTree(t *testing.T) {
	cfg := config.Default()
	root := newRootCmd(&cfg)

	var got []string
	var walk func(cmd *cobra.Command, prefix string)
	walk = func(cmd *cobra.Command, prefix string) {
		for _, child := range cmd.Commands() {
			if child.Name() == "help" || child.Name() == "completion" {
				continue
			}
			path := strings.TrimSpace(prefix + " " + child.Name())
			if len(child.Commands()) == 0 {
				got = append(got, path)
				if child.RunE == nil && child.Run == nil {
					t.Errorf("command %q has no handler", path)
				}
			}
			walk(child, path)
		}
	}
	walk(root, "")

	for _, want := range commandPaths {
		if !slices.Contains(got, want) {
			t.Errorf("missing command %q", want)
		}
	}
	for _, path := range got {
		if !slices.Contains(commandPaths, path) {
			t.Errorf("unexpected command %q; add it to commandPaths", path)
		}
	}
}

func TestEveryCommandConstructorIsReachable(t *testing.T) {
	fset := token.NewFileSet()
	defined := map[string]bool{}
	called := map[string]bool{}

	for _, path := range commandSourceFiles(t) {
		file, err := parser.ParseFile(fset, path, nil, 0)
		if err != nil {
			t.Fatalf("parse %s: %v", path, err)
		}
		ast.Inspect(file, func(n ast.Node) bool {
			switch node := n.(type) {
			case *ast.FuncDecl:
				if isCommandConstructor(node.Name.Name) {
					defined[node.Name.Name] = true
				}
			case *ast.CallExpr:
				if ident, ok := node.Fun.(*ast.Ident); ok && isCommandConstructor(ident.Name) {
					called[ident.Name] = true
				}
			}
			return true
		})
	}

	if !defined["newRootCmd"] {
		t.Fatal("newRootCmd not found")
	}
	for name := range defined {
		if name != "newRootCmd" && !called[name] {
			t.Errorf("%s is never attached to a parent command", name)
		}
	}
}

func TestCommandConstructorsStaySmall(t *testing.T) {
	maxLines := maxCmdConstructorLines()
	fset := token.NewFileSet()

	for _, path := range commandSourceFiles(t) {
		file, err := parser.ParseFile(fset, path, nil, 0)
		if err != nil {
			t.Fatalf("parse %s: %v", path, err)
		}

		for _, decl := range file.Decls {
			fn, ok := decl.(*ast.FuncDecl)
			if !ok || fn.Name == nil || fn.Body == nil {
				continue
			}
			if !isCommandConstructor(fn.Name.Name) {
				continue
			}

			start := fset.Position(fn.Body.Lbrace).Line
			end := fset.Position(fn.Body.Rbrace).Line
			length := end - start + 1
			if length > maxLines {
				t.Fatalf("constructor %s in %s is too large: %d lines (max %d)",
					fn.Name.Name, filepath.Base(path), length, maxLines)
			}
		}
	}
}

func commandSourceFiles(t *testing.T) []string {
	t.Helper()
	_, self, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("runtime.Caller failed")
	}
	dir := filepath.Dir(self)

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read %s: %v", dir, err)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	return files
}

func isCommandConstructor(name string) bool {
	return strings.HasPrefix(name, "new") && strings.HasSuffix(name, "Cmd")
}

func maxCmdConstructorLines() int {
	value := strings.TrimSpace(os.Getenv("TASKHUB_MAX_CMD_CONSTRUCTOR_LINES"))
	if value == "" {
		return defaultMaxCmdConstructorLines
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return defaultMaxCmdConstructorLines
	}
	return parsed
}
