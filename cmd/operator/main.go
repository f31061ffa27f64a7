// Command operator is a thin client for the producer's control
// surface, replacing original_source/control_panel.c's ncurses
// dashboard with a scriptable CLI: pause/resume/refill/adjust one
// station, or print the current state as JSON.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"
)

func main() {
	socket := flag.String("socket", "/tmp/burger_system.sock", "path to the producer's control socket")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	client := newUnixClient(*socket)

	var err error
	switch args[0] {
	case "state":
		err = client.get("/state")
	case "menu":
		err = client.get("/menu")
	case "pause":
		err = client.stationAction(args, "pause")
	case "resume":
		err = client.stationAction(args, "resume")
	case "refill":
		err = client.stationAction(args, "refill")
	case "refill-ingredient":
		err = client.ingredientAction(args, "refill")
	case "adjust":
		err = client.adjust(args)
	case "refill-all":
		err = client.post("/refill-all", nil)
	case "refill-critical":
		err = client.post("/refill-critical", nil)
	case "refill-exhausted":
		err = client.post("/refill-exhausted", nil)
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: operator [-socket path] <command> [args]

commands:
  state                              print the live production state
  menu                               print the recipe catalog
  pause <station-id>                 pause one station
  resume <station-id>                resume one station
  refill <station-id>                refill every dispenser at one station
  refill-ingredient <station-id> <idx>  refill one dispenser
  adjust <station-id> <idx> <delta>  adjust one dispenser by delta
  refill-all                         refill every dispenser on every station
  refill-critical                    refill dispensers flagged low or exhausted
  refill-exhausted                   refill only dispensers at zero`)
}

// unixClient is an http.Client dialing a Unix domain socket, mirroring
// how a two-process attach-only handle behaves under the redesigned
// contract (see SPEC_FULL.md §1): the operator only ever net.Dials,
// never creates or removes the socket file.
type unixClient struct {
	http     *http.Client
	fakeHost string
}

func newUnixClient(socketPath string) *unixClient {
	transport := &http.Transport{
		DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
			d := net.Dialer{Timeout: 5 * time.Second}
			return d.DialContext(ctx, "unix", socketPath)
		},
	}
	return &unixClient{
		http:     &http.Client{Transport: transport, Timeout: 5 * time.Second},
		fakeHost: "http://unix",
	}
}

func (c *unixClient) get(path string) error {
	resp, err := c.http.Get(c.fakeHost + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return printResponse(resp)
}

func (c *unixClient) post(path string, body []byte) error {
	resp, err := c.http.Post(c.fakeHost+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return printResponse(resp)
}

func (c *unixClient) stationAction(args []string, action string) error {
	if len(args) < 2 {
		return fmt.Errorf("%s requires a station id", action)
	}
	return c.post(fmt.Sprintf("/stations/%s/%s", args[1], action), nil)
}

func (c *unixClient) ingredientAction(args []string, action string) error {
	if len(args) < 3 {
		return fmt.Errorf("%s requires a station id and dispenser index", action)
	}
	return c.post(fmt.Sprintf("/stations/%s/ingredients/%s/%s", args[1], args[2], action), nil)
}

func (c *unixClient) adjust(args []string) error {
	if len(args) < 4 {
		return fmt.Errorf("adjust requires a station id, dispenser index and delta")
	}
	var delta int
	if _, err := fmt.Sscanf(args[3], "%d", &delta); err != nil {
		return fmt.Errorf("invalid delta %q: %w", args[3], err)
	}
	body, err := json.Marshal(map[string]int{"delta": delta})
	if err != nil {
		return err
	}
	return c.post(fmt.Sprintf("/stations/%s/ingredients/%s/adjust", args[1], args[2]), body)
}

func printResponse(resp *http.Response) error {
	buf, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	var pretty bytes.Buffer
	if json.Indent(&pretty, buf, "", "  ") == nil {
		fmt.Println(strings.TrimSpace(pretty.String()))
	} else {
		fmt.Println(string(buf))
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("request failed: %s", resp.Status)
	}
	return nil
}
