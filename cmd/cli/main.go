package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	token   string
	timeout time.Duration
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "partyvault-cli",
		Short: "PartyVault CLI tool",
		Long:  `A command line interface for interacting with the PartyVault API.`,
	}

	cmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the PartyVault API")
	cmd.PersistentFlags().StringVar(&token, "token", "", "Bearer token (from login)")
	cmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	cmd.AddCommand(loginCmd())
	cmd.AddCommand(balancesCmd())
	cmd.AddCommand(splitCmd())
	cmd.AddCommand(activityCmd())

	return cmd
}

func loginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and print a bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := doRequest(http.MethodPost, "/api/v1/auth/login", map[string]string{
				"email":    email,
				"password": password,
			})
			if err != nil {
				return err
			}

			printJSON(body)

			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "User email")
	cmd.Flags().StringVar(&password, "password", "", "User password")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")

	return cmd
}

func balancesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balances <vault-id>",
		Short: "Show a vault's per-currency balances",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := doRequest(http.MethodGet, "/api/v1/vaults/"+args[0]+"/balances", nil)
			if err != nil {
				return err
			}

			printJSON(body)

			return nil
		},
	}
}

func splitCmd() *cobra.Command {
	var (
		members int
		keep    bool
		mode    string
	)

	cmd := &cobra.Command{
		Use:   "split <vault-id>",
		Short: "Divide a vault's holdings across the party",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := doRequest(http.MethodPost, "/api/v1/vaults/"+args[0]+"/split", map[string]any{
				"party_member_count": members,
				"keep_party_share":   keep,
				"mode":               mode,
			})
			if err != nil {
				return err
			}

			printJSON(body)

			return nil
		},
	}

	cmd.Flags().IntVar(&members, "members", 0, "Number of party members")
	cmd.Flags().BoolVar(&keep, "keep", false, "Keep one share in the vault")
	cmd.Flags().StringVar(&mode, "mode", "", "Split mode: per_currency (default) or base")
	cmd.MarkFlagRequired("members")

	return cmd
}

func activityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "activity <vault-id>",
		Short: "Show a vault's activity log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := doRequest(http.MethodGet, "/api/v1/vaults/"+args[0]+"/activity", nil)
			if err != nil {
				return err
			}

			printJSON(body)

			return nil
		},
	}
}

// doRequest sends one API request and returns the raw response body. Any
// non-2xx status is an error carrying the body for context.
func doRequest(method, path string, payload any) ([]byte, error) {
	var reqBody io.Reader

	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, baseURL+path, reqBody)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("request failed (status %d): %s", resp.StatusCode, body)
	}

	return body, nil
}

// printJSON pretty-prints a raw JSON body, falling back to raw output.
func printJSON(body []byte) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		fmt.Println(string(body))
		return
	}

	fmt.Println(buf.String())
}
