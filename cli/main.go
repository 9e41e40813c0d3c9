// Command cli is a terminal client for the QA backend.
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	serverURL   string
	sessionID   string
	model       string
	temperature float64
	useWeb      bool
	stream      bool
)

func main() {
	root := &cobra.Command{
		Use:   "docqa",
		Short: "Client for the document QA backend",
	}
	root.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "backend base URL")

	askCmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(strings.Join(args, " "))
		},
	}
	askCmd.Flags().StringVar(&sessionID, "session", "", "session id to continue")
	askCmd.Flags().StringVar(&model, "model", "", "model override")
	askCmd.Flags().Float64Var(&temperature, "temperature", -1, "temperature override")
	askCmd.Flags().BoolVar(&useWeb, "web", false, "enable web search for this question")
	askCmd.Flags().BoolVar(&stream, "stream", false, "stream the answer")

	sessionsCmd := &cobra.Command{
		Use:   "sessions",
		Short: "List sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSessions()
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show backend capability status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus()
		},
	}

	root.AddCommand(askCmd, sessionsCmd, statusCmd)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func askBody(question string) ([]byte, error) {
	payload := map[string]interface{}{
		"question":       question,
		"use_web_search": useWeb,
	}
	if sessionID != "" {
		payload["history_id"] = sessionID
	}
	if model != "" {
		payload["model"] = model
	}
	if temperature >= 0 {
		payload["temperature"] = temperature
	}
	return json.Marshal(payload)
}

func runAsk(question string) error {
	body, err := askBody(question)
	if err != nil {
		return err
	}
	if stream {
		return streamAsk(body)
	}

	client := &http.Client{Timeout: 5 * time.Minute}
	resp, err := client.Post(serverURL+"/api/question", "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&e)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, e.Error)
	}

	var result struct {
		Answer     string      `json:"answer"`
		Sources    []string    `json:"sources"`
		WebSources []webSource `json:"web_sources"`
		HistoryID  string      `json:"history_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	fmt.Println(result.Answer)
	printProvenance(result.Sources, sourcesOf(result.WebSources), result.HistoryID)
	return nil
}

type webSource struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

func sourcesOf(ws []webSource) []string {
	out := make([]string, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.URL)
	}
	return out
}

func streamAsk(body []byte) error {
	client := &http.Client{Timeout: 5 * time.Minute}
	req, err := http.NewRequest(http.MethodPost, serverURL+"/api/question/stream", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&e)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, e.Error)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var frame struct {
			Text       string      `json:"text"`
			Done       bool        `json:"done"`
			Sources    []string    `json:"sources"`
			WebSources []webSource `json:"web_sources"`
			HistoryID  string      `json:"history_id"`
			Error      string      `json:"error"`
		}
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &frame); err != nil {
			return fmt.Errorf("bad stream frame: %w", err)
		}

		fmt.Print(frame.Text)
		if frame.Done {
			fmt.Println()
			if frame.Error != "" {
				return fmt.Errorf("%s", frame.Error)
			}
			printProvenance(frame.Sources, sourcesOf(frame.WebSources), frame.HistoryID)
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("stream interrupted: %w", err)
	}
	return fmt.Errorf("stream ended without final frame")
}

func printProvenance(sources, webSources []string, historyID string) {
	if len(sources) > 0 {
		fmt.Printf("\nSources: %s\n", strings.Join(sources, ", "))
	}
	if len(webSources) > 0 {
		fmt.Printf("Web sources: %s\n", strings.Join(webSources, ", "))
	}
	if historyID != "" {
		fmt.Printf("Session: %s\n", historyID)
	}
}

func runSessions() error {
	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Get(serverURL + "/api/sessions")
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		Sessions []struct {
			SessionID    string    `json:"session_id"`
			MessageCount int       `json:"message_count"`
			LastAccess   time.Time `json:"last_access"`
		} `json:"sessions"`
		Count int `json:"count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if result.Count == 0 {
		fmt.Println("No sessions")
		return nil
	}
	for _, s := range result.Sessions {
		fmt.Printf("%s  %3d messages  last used %s\n",
			s.SessionID, s.MessageCount, s.LastAccess.Format(time.RFC3339))
	}
	return nil
}

func runStatus() error {
	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Get(serverURL + "/api/status")
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var status map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	out, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
