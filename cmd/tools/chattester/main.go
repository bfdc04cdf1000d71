// Command chattester drives a running chatbot backend from the terminal, keeping the
// session cookie between turns so multi-turn conversations can be checked by hand.
package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type client struct {
	baseURL string
	http    *http.Client
}

func newClient(baseURL string, timeout time.Duration) (*client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Jar: jar, Timeout: timeout},
	}, nil
}

func (c *client) call(ctx context.Context, method, path string, body any) (int, map[string]any, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return resp.StatusCode, nil, fmt.Errorf("decode response: %w", err)
	}
	return resp.StatusCode, decoded, nil
}

func (c *client) chat(ctx context.Context, message, language string) (string, error) {
	status, body, err := c.call(ctx, http.MethodPost, "/chat", map[string]string{
		"message":  message,
		"language": language,
	})
	if err != nil {
		return "", err
	}
	if status != http.StatusOK || body["success"] != true {
		return "", fmt.Errorf("chat failed (%d): %v", status, body["error"])
	}
	reply, _ := body["response"].(string)
	return reply, nil
}

func (c *client) clear(ctx context.Context) error {
	status, body, err := c.call(ctx, http.MethodPost, "/clear", nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK || body["success"] != true {
		return fmt.Errorf("clear failed (%d): %v", status, body["error"])
	}
	return nil
}

func main() {
	var (
		baseURL  string
		language string
		timeout  time.Duration
	)

	root := &cobra.Command{
		Use:           "chattester",
		Short:         "Exercise the chatbot HTTP API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:5000", "backend base URL")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 60*time.Second, "per-request timeout")

	chatCmd := &cobra.Command{
		Use:   "chat [message...]",
		Short: "Send messages in one session; reads stdin line by line when no message is given",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(baseURL, timeout)
			if err != nil {
				return err
			}

			send := func(message string) error {
				reply, err := c.chat(cmd.Context(), message, language)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "> %s\n< %s\n", message, reply)
				return nil
			}

			if len(args) > 0 {
				for _, message := range args {
					if err := send(message); err != nil {
						return err
					}
				}
				return nil
			}

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for scanner.Scan() {
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				if line == "/clear" {
					if err := c.clear(cmd.Context()); err != nil {
						fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
						continue
					}
					fmt.Fprintln(cmd.OutOrStdout(), "(conversation cleared)")
					continue
				}
				if err := send(line); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
				}
			}
			return scanner.Err()
		},
	}
	chatCmd.Flags().StringVarP(&language, "lang", "l", "kannada", "language tag (kannada or english)")

	healthCmd := &cobra.Command{
		Use:   "health",
		Short: "Query the health endpoint",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newClient(baseURL, timeout)
			if err != nil {
				return err
			}
			status, body, err := c.call(cmd.Context(), http.MethodGet, "/health", nil)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d %v\n", status, body)
			return nil
		},
	}

	root.AddCommand(chatCmd, healthCmd)

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "chattester:", err)
		os.Exit(1)
	}
}
