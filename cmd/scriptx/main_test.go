package main

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(io.Discard)
	err := root.Execute()
	return out.String(), err
}

func TestTokensCommand(t *testing.T) {
	out, err := execute(t, "tokens", "let x = 5;")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 6 {
		t.Fatalf("got %d lines, want 6:\n%s", len(lines), out)
	}
	if lines[0] != `LET("let")@0` {
		t.Errorf("got %q", lines[0])
	}
	if lines[5] != "EOF@10" {
		t.Errorf("got %q, want EOF@10", lines[5])
	}
}

func TestParseCommand(t *testing.T) {
	out, err := execute(t, "parse", "let x = 5*2+3;")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "let x = (5 * (2 + 3));\n<end>\n" {
		t.Errorf("got %q", out)
	}

	out, err = execute(t, "parse", "--repr", "-e", "let x = 1;")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "ast.LetStatement") {
		t.Errorf("repr output should name the node types, got:\n%s", out)
	}
}

func TestRunCommand(t *testing.T) {
	out, err := execute(t, "run", "let y = x * 2;", "--var", "x=21")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "y = 42 (integer)\n" {
		t.Errorf("got %q", out)
	}

	out, err = execute(t, "run", "-e", "let z = a / b;", "--bindings", "{a: 1, b: 4.0}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "z = 0.25 (float)\n" {
		t.Errorf("got %q", out)
	}
}

func TestRunCommandVarOverridesBindings(t *testing.T) {
	out, err := execute(t, "run", "let y = x;", "--bindings", `{"x": 1}`, "--var", "x=2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "y = 2 (integer)\n" {
		t.Errorf("got %q", out)
	}
}

func TestRunCommandJSON(t *testing.T) {
	out, err := execute(t, "run", "let a = 1; let b = a + 0.5;", "-o", "json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got struct {
		Results []struct {
			Name  string  `json:"name"`
			Value float64 `json:"value"`
		} `json:"results"`
		Bindings map[string]float64 `json:"bindings"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if len(got.Results) != 2 || got.Results[1].Name != "b" || got.Results[1].Value != 1.5 {
		t.Errorf("got %+v", got.Results)
	}
	if got.Bindings["a"] != 1 {
		t.Errorf("got bindings %v", got.Bindings)
	}
}

func TestRunCommandYAML(t *testing.T) {
	out, err := execute(t, "run", "let a = 2.0;", "-o", "yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got map[string]interface{}
	if err := yaml.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid YAML %q: %v", out, err)
	}
	bindings := got["bindings"].(map[string]interface{})
	if _, ok := bindings["a"].(float64); !ok {
		t.Errorf("a decoded as %T, want float64:\n%s", bindings["a"], out)
	}
}

func TestCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"undeclared", []string{"run", "let x = y;"}},
		{"syntax", []string{"parse", "let x = ;"}},
		{"strict", []string{"parse", "--strict", "5;"}},
		{"no source", []string{"run"}},
		{"both sources", []string{"run", "-e", "let x = 1;", "let y = 2;"}},
		{"bad var", []string{"run", "let y = x;", "--var", "x"}},
		{"bad output", []string{"parse", "let x = 1;", "-o", "xml"}},
		{"source too long", []string{"parse", "--max-source-length", "3", "let x = 1;"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestParserOptionsFromEnvironment(t *testing.T) {
	t.Setenv("SCRIPTX_MAX_DEPTH", "2")
	if _, err := execute(t, "parse", "let x = 1+2+3;"); err == nil {
		t.Error("expected depth error from SCRIPTX_MAX_DEPTH")
	}
	if _, err := execute(t, "parse", "--max-depth", "3", "let x = 1+2+3;"); err != nil {
		t.Errorf("flag should override the environment: %v", err)
	}

	t.Setenv("SCRIPTX_STRICT", "true")
	if _, err := execute(t, "parse", "5;"); err == nil {
		t.Error("expected strict error from SCRIPTX_STRICT")
	}
}
