package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"plugin"
	"strings"
	"testing"

	"github.com/fatih/color"

	"alaqsa/internal/core"
	"alaqsa/internal/loader"
	"alaqsa/internal/storage"
	"alaqsa/pkg/module"
)

func init() {
	color.NoColor = true
}

type exploitModule struct {
	*module.Values
	runs int
}

func newExploitModule() module.Module {
	return &exploitModule{Values: module.NewValues(map[string]string{"rport": "80"})}
}

func (m *exploitModule) Describe() string { return "Test exploit\nsecond line" }

func (m *exploitModule) Execute(ctx context.Context) error {
	m.runs++
	if _, ok := m.Get("rhost"); !ok {
		return errors.New("exploit failed: rhost was not set.")
	}
	return nil
}

func (m *exploitModule) Options() []module.Option {
	return []module.Option{
		{Key: "rport", Description: "remote target port", Optional: true},
		{Key: "rhost", Description: "remote target host", Optional: false},
	}
}

type otherModule struct{ exploitModule }

func newOtherModule() module.Module {
	return &otherModule{exploitModule{Values: module.NewValues(nil)}}
}

func (m *otherModule) Describe() string { return "Other module" }

type symbols map[string]plugin.Symbol

func (s symbols) Lookup(name string) (plugin.Symbol, error) {
	sym, ok := s[name]
	if !ok {
		return nil, fmt.Errorf("symbol %s not found", name)
	}
	return sym, nil
}

type fakeAudit struct {
	events []storage.AuditEvent
}

func (a *fakeAudit) Write(ctx context.Context, ev storage.AuditEvent) error {
	a.events = append(a.events, ev)
	return nil
}

type fakeRuns struct {
	runs []storage.RunRecord
}

func (r *fakeRuns) SaveRun(ctx context.Context, rec storage.RunRecord) error {
	r.runs = append(r.runs, rec)
	return nil
}

type fakeProgress struct {
	started []string
	stops   int
}

func (p *fakeProgress) Start(msg string) { p.started = append(p.started, msg) }
func (p *fakeProgress) Stop()            { p.stops++ }

type harness struct {
	d     *Dispatcher
	out   *bytes.Buffer
	audit *fakeAudit
	runs  *fakeRuns
	sess  *core.Session
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	libs := map[string]symbols{
		"/mods/zte.so":    {module.EntrySymbol: newExploitModule},
		"/mods/other.so":  {module.EntrySymbol: newOtherModule},
		"/mods/broken.so": {},
	}
	opener := loader.OpenerFunc(func(path string) (loader.Symbols, error) {
		syms, ok := libs[path]
		if !ok {
			return nil, errors.New("cannot open shared object file: No such file or directory")
		}
		return syms, nil
	})
	sess := core.NewSession(loader.New(opener, nil), nil)
	h := &harness{out: &bytes.Buffer{}, audit: &fakeAudit{}, runs: &fakeRuns{}, sess: sess}
	h.d = &Dispatcher{
		Session:   sess,
		Out:       h.out,
		SessionID: "test-session",
		Audit:     h.audit,
		Runs:      h.runs,
	}
	return h
}

func (h *harness) exec(t *testing.T, line string) string {
	t.Helper()
	cmd, err := ParseCommand(line)
	if err != nil {
		t.Fatalf("parse %q: %v", line, err)
	}
	h.out.Reset()
	h.d.Dispatch(context.Background(), cmd)
	return h.out.String()
}

func optionRow(t *testing.T, out, key string) string {
	t.Helper()
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, " "+key+" ") {
			return line
		}
	}
	t.Fatalf("option %s not found in:\n%s", key, out)
	return ""
}

func TestNoModuleLoaded(t *testing.T) {
	h := newHarness(t)
	for _, line := range []string{"run", "set rhost 10.0.0.1", "options", "help"} {
		out := h.exec(t, line)
		if strings.TrimSpace(out) != "no modules loaded." {
			t.Fatalf("%q: unexpected output %q", line, out)
		}
		if _, ok := h.sess.Active(); ok {
			t.Fatalf("%q: session changed", line)
		}
	}
	if len(h.runs.runs) != 0 {
		t.Fatalf("no run must be recorded without a module")
	}
	for _, ev := range h.audit.events {
		if ev.Status != statusNoModule {
			t.Fatalf("unexpected audit status: %#v", ev)
		}
	}
}

func TestLoadAndReplace(t *testing.T) {
	h := newHarness(t)
	out := h.exec(t, "load /mods/zte.so")
	if !strings.Contains(out, "loaded module /mods/zte.so") {
		t.Fatalf("unexpected output: %q", out)
	}
	first, _ := h.sess.Active()

	out = h.exec(t, "l /mods/other.so")
	if !strings.Contains(out, "loaded module /mods/other.so") {
		t.Fatalf("unexpected output: %q", out)
	}
	second, _ := h.sess.Active()
	if first.ID == second.ID || second.Path != "/mods/other.so" {
		t.Fatalf("binding not replaced: %#v -> %#v", first, second)
	}
	if out := h.exec(t, "help"); !strings.Contains(out, "Other module") {
		t.Fatalf("help must describe the new module: %q", out)
	}
}

func TestLoadMissingKeepsSession(t *testing.T) {
	h := newHarness(t)
	h.exec(t, "load /mods/zte.so")
	h.exec(t, "set rhost 10.0.0.1")
	before, _ := h.sess.Active()

	out := h.exec(t, "load /mods/nope.so")
	if !strings.HasPrefix(out, "Error: ") || !strings.Contains(out, "No such file") {
		t.Fatalf("expected load error, got %q", out)
	}
	after, ok := h.sess.Active()
	if !ok || after != before {
		t.Fatalf("session changed: %#v -> %#v", before, after)
	}
	if row := optionRow(t, h.exec(t, "options"), "rhost"); !strings.Contains(row, "10.0.0.1") {
		t.Fatalf("previous module state lost: %q", row)
	}
}

func TestLoadMissingSymbol(t *testing.T) {
	h := newHarness(t)
	out := h.exec(t, "load /mods/broken.so")
	if !strings.Contains(out, "entry symbol missing") {
		t.Fatalf("expected symbol error, got %q", out)
	}
	if _, ok := h.sess.Active(); ok {
		t.Fatalf("session must stay empty")
	}
}

func TestLoadEmptyPathIsNoop(t *testing.T) {
	h := newHarness(t)
	progress := &fakeProgress{}
	h.d.Progress = progress
	if out := h.exec(t, `load ""`); out != "" {
		t.Fatalf("empty path must be silent, got %q", out)
	}
	if _, ok := h.sess.Active(); ok {
		t.Fatalf("session must stay empty")
	}
	if len(progress.started) != 0 {
		t.Fatalf("progress must not start for empty path")
	}
	if last := h.audit.events[len(h.audit.events)-1]; last.Status != statusIgnored {
		t.Fatalf("unexpected audit status: %s", last.Status)
	}
}

func TestLoadShowsProgress(t *testing.T) {
	h := newHarness(t)
	progress := &fakeProgress{}
	h.d.Progress = progress
	h.exec(t, "load /mods/zte.so")
	if len(progress.started) != 1 || progress.stops != 1 {
		t.Fatalf("unexpected progress calls: %#v", progress)
	}
}

func TestOptionsShowLastValue(t *testing.T) {
	h := newHarness(t)
	h.exec(t, "load /mods/zte.so")

	out := h.exec(t, "options")
	if !strings.HasPrefix(out, "Options:") {
		t.Fatalf("unexpected header: %q", out)
	}
	if row := optionRow(t, out, "rhost"); !strings.Contains(row, module.Null) || !strings.Contains(row, "*") {
		t.Fatalf("unset required option must show null and marker: %q", row)
	}
	if row := optionRow(t, out, "rport"); !strings.Contains(row, "80") || strings.Contains(row, "*") {
		t.Fatalf("optional option row unexpected: %q", row)
	}
	if strings.Index(out, "rport") > strings.Index(out, "rhost") {
		t.Fatalf("options must keep declaration order:\n%s", out)
	}

	h.exec(t, "set rhost v1")
	h.exec(t, "set rhost v2")
	row := optionRow(t, h.exec(t, "o"), "rhost")
	if !strings.Contains(row, "v2") || strings.Contains(row, "v1") {
		t.Fatalf("expected only last value, got %q", row)
	}
}

func TestSetUnknownKeyIsStored(t *testing.T) {
	h := newHarness(t)
	h.exec(t, "load /mods/zte.so")
	if out := h.exec(t, "set proxy socks5://127.0.0.1:9050"); out != "" {
		t.Fatalf("set must be silent, got %q", out)
	}
	got, err := core.With(h.sess, func(m module.Module) string { return module.Display(m, "proxy") })
	if err != nil || got != "socks5://127.0.0.1:9050" {
		t.Fatalf("unexpected value %q (%v)", got, err)
	}
}

func TestHelpVerbatim(t *testing.T) {
	h := newHarness(t)
	h.exec(t, "load /mods/zte.so")
	if out := h.exec(t, "h"); out != "Module info:\nTest exploit\nsecond line\n" {
		t.Fatalf("unexpected help output: %q", out)
	}
}

func TestRunMissingRequiredThenSucceeds(t *testing.T) {
	h := newHarness(t)
	h.exec(t, "load /mods/zte.so")
	before, _ := h.sess.Active()

	out := h.exec(t, "run")
	if !strings.Contains(out, "Error:") || !strings.Contains(out, "rhost") {
		t.Fatalf("expected failure mentioning rhost, got %q", out)
	}
	after, _ := h.sess.Active()
	if before != after {
		t.Fatalf("run failure must not change session")
	}

	h.exec(t, "set rhost 192.168.1.1")
	if out := h.exec(t, "r"); out != "" {
		t.Fatalf("expected clean run, got %q", out)
	}
	if len(h.runs.runs) != 2 {
		t.Fatalf("expected 2 run records, got %d", len(h.runs.runs))
	}
	failed, succeeded := h.runs.runs[0], h.runs.runs[1]
	if failed.Status != statusError || !strings.Contains(failed.Error, "rhost") || failed.Module != "/mods/zte.so" {
		t.Fatalf("unexpected failed run: %#v", failed)
	}
	if succeeded.Status != statusOK || succeeded.SessionID != "test-session" {
		t.Fatalf("unexpected ok run: %#v", succeeded)
	}
}

func TestAuditSkipsOptionValues(t *testing.T) {
	h := newHarness(t)
	h.exec(t, "load /mods/zte.so")
	h.exec(t, "set password hunter2")
	last := h.audit.events[len(h.audit.events)-1]
	if last.Command != "set" || last.Module != "/mods/zte.so" {
		t.Fatalf("unexpected audit event: %#v", last)
	}
	if strings.Contains(string(last.Payload), "hunter2") {
		t.Fatalf("option value leaked into audit: %s", last.Payload)
	}
	if string(last.Payload) != `{"args":{"key":"password"},"command":"set"}` {
		t.Fatalf("unexpected audit payload: %s", last.Payload)
	}
}

func TestQuit(t *testing.T) {
	h := newHarness(t)
	if !h.d.Dispatch(context.Background(), Command{Kind: KindQuit}) {
		t.Fatalf("quit must stop the loop")
	}
	if h.d.Dispatch(context.Background(), Command{Kind: KindHelp}) {
		t.Fatalf("help must not stop the loop")
	}
}
