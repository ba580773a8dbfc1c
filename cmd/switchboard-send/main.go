// switchboard-send pipes stdin to a room through a running switchboard
// server. By default the text goes straight to the room's terminal; with
// -dispatch it runs the full dispatch pipeline instead.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"switchboard/internal/command"
	"switchboard/internal/version"
)

const defaultServerURL = "http://127.0.0.1:8347"

var httpClient = &http.Client{Timeout: 30 * time.Second}

type Config struct {
	URL         string
	Token       string
	Room        string
	Dispatch    bool
	Priority    int
	ShowVersion bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, in io.Reader, out, errOut io.Writer) int {
	cfg, err := parseArgs(args, errOut)
	if err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		fmt.Fprintln(errOut, err)
		return 1
	}
	if cfg.ShowVersion {
		fmt.Fprintln(out, "switchboard-send "+version.Version)
		return 0
	}

	text, err := io.ReadAll(in)
	if err != nil {
		fmt.Fprintf(errOut, "read stdin: %v\n", err)
		return 3
	}
	if len(bytes.TrimSpace(text)) == 0 {
		fmt.Fprintln(errOut, "nothing to send")
		return 1
	}

	result, err := send(cfg, string(text))
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	if !result.Success {
		fmt.Fprintln(errOut, result.Message)
		return 2
	}
	fmt.Fprintln(out, result.Message)
	return 0
}

func parseArgs(args []string, errOut io.Writer) (Config, error) {
	fs := flag.NewFlagSet("switchboard-send", flag.ContinueOnError)
	fs.SetOutput(errOut)
	urlFlag := fs.String("url", "", "server URL (env: SWITCHBOARD_URL, default: "+defaultServerURL+")")
	tokenFlag := fs.String("token", "", "auth token (env: SWITCHBOARD_TOKEN)")
	dispatchFlag := fs.Bool("dispatch", false, "run the dispatch pipeline instead of raw terminal input")
	priorityFlag := fs.Int("priority", 3, "task priority 1-5, dispatch mode only")
	versionFlag := fs.Bool("version", false, "print version and exit")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: switchboard-send [flags] <room>")
		fmt.Fprintln(fs.Output(), "reads text from stdin and sends it to the named room")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if *versionFlag {
		return Config{ShowVersion: true}, nil
	}
	if fs.NArg() != 1 || strings.TrimSpace(fs.Arg(0)) == "" {
		fs.Usage()
		return Config{}, fmt.Errorf("room name required")
	}

	url := strings.TrimSpace(*urlFlag)
	if url == "" {
		url = strings.TrimSpace(os.Getenv("SWITCHBOARD_URL"))
	}
	if url == "" {
		url = defaultServerURL
	}
	token := strings.TrimSpace(*tokenFlag)
	if token == "" {
		token = strings.TrimSpace(os.Getenv("SWITCHBOARD_TOKEN"))
	}

	return Config{
		URL:      strings.TrimSuffix(url, "/"),
		Token:    token,
		Room:     strings.TrimSpace(fs.Arg(0)),
		Dispatch: *dispatchFlag,
		Priority: *priorityFlag,
	}, nil
}

func send(cfg Config, text string) (command.Result, error) {
	req := command.Request{
		Action: command.ActionStdin,
		Room:   cfg.Room,
		Text:   text,
	}
	if cfg.Dispatch {
		req = command.Request{
			Action:   command.ActionPrompt,
			Room:     cfg.Room,
			Prompt:   text,
			Priority: cfg.Priority,
		}
	}
	body, err := json.Marshal(req)
	if err != nil {
		return command.Result{}, err
	}

	httpReq, err := http.NewRequest(http.MethodPost, cfg.URL+"/api/command", bytes.NewReader(body))
	if err != nil {
		return command.Result{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if cfg.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+cfg.Token)
	}

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return command.Result{}, fmt.Errorf("send failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return command.Result{}, fmt.Errorf("server returned %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}
	var result command.Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return command.Result{}, fmt.Errorf("decode response: %w", err)
	}
	return result, nil
}
