package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
)

var waitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Block until the mibauu API reports healthy",
	Long: `Poll GET /health until the API answers {"status":"ok"}.

The health check covers the record store and the enabled sign-in
backend, so a ready server can both serve the catalog and log users in.
While waiting, the reason the last check failed is reported.

Example:
  mibauuctl wait
  mibauuctl wait --host api.internal --port 3000 --retries 60`,
	Run: func(cmd *cobra.Command, args []string) {
		host, _ := cmd.Flags().GetString("host")
		port, _ := cmd.Flags().GetInt("port")
		retries, _ := cmd.Flags().GetInt("retries")

		url := fmt.Sprintf("http://%s:%d/health", host, port)
		auth, err := waitForServer(os.Stdout, url, retries, time.Second)
		if err != nil {
			fmt.Fprintf(os.Stderr, "mibauu did not become healthy: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("mibauu is serving with the %s authenticator\n", auth)
	},
}

func init() {
	rootCmd.AddCommand(waitCmd)
	waitCmd.Flags().String("host", "localhost", "Server host to check")
	waitCmd.Flags().IntP("port", "p", defaultPortInt(), "Server port to check")
	waitCmd.Flags().IntP("retries", "r", 90, "Number of retries")
}

// waitForServer polls url until the health body says ok and returns the
// authenticator name it reports.
func waitForServer(out io.Writer, url string, retries int, interval time.Duration) (string, error) {
	client := &http.Client{Timeout: 2 * time.Second}
	reason := "no response"

	fmt.Fprintf(out, "Waiting for %s\n", url)
	for i := 0; i < retries; i++ {
		if i > 0 {
			time.Sleep(interval)
		}

		body, err := fetchHealth(client, url)
		if err != nil {
			reason = err.Error()
			continue
		}
		if gjson.GetBytes(body, "status").String() == "ok" {
			return gjson.GetBytes(body, "authenticator").String(), nil
		}

		next := gjson.GetBytes(body, "error").String()
		if next == "" {
			next = "unhealthy"
		}
		if next != reason {
			fmt.Fprintf(out, "  %s\n", next)
		}
		reason = next
	}

	return "", fmt.Errorf("not ready after %d attempts: %s", retries, reason)
}

func fetchHealth(client *http.Client, url string) ([]byte, error) {
	resp, err := client.Get(url)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("status %d without a health body", resp.StatusCode)
	}
	return body, nil
}
