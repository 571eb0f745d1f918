package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	serverURL   string
	noAutoStart bool
	rootCmd     = &cobra.Command{
		Use:   "vscraper",
		Short: "vscraper CLI - media download manager",
		Long:  `A command-line interface for managing media downloads driven by yt-dlp.`,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8090", "Server URL")
	rootCmd.PersistentFlags().BoolVar(&noAutoStart, "no-auto-start", false, "Don't auto-start server if not running")

	downloadCmd.Flags().String("quality", "Best", "Quality: Best, 1080p, 720p, 480p")
	downloadCmd.Flags().String("format", "MP4", "Format: MP4, MKV, AVI, WebM")
	downloadCmd.Flags().Bool("audio-only", false, "Extract audio only")
	downloadCmd.Flags().Bool("subtitles", false, "Download subtitles")
	downloadCmd.Flags().Bool("thumbnail", false, "Download thumbnail")
	downloadCmd.Flags().String("dest", "", "Destination directory")
	listCmd.Flags().String("state", "", "Filter by state")

	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(cancelCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(configCmd)
}

// ensureServer checks if server is running and starts it if needed (unless --no-auto-start)
func ensureServer() {
	if noAutoStart {
		return
	}
	if err := ensureServerRunning(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
}

var downloadCmd = &cobra.Command{
	Use:   "download [url]",
	Short: "Submit a download job",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ensureServer()

		quality, _ := cmd.Flags().GetString("quality")
		format, _ := cmd.Flags().GetString("format")
		audioOnly, _ := cmd.Flags().GetBool("audio-only")
		subtitles, _ := cmd.Flags().GetBool("subtitles")
		thumbnail, _ := cmd.Flags().GetBool("thumbnail")
		dest, _ := cmd.Flags().GetString("dest")

		payload := map[string]interface{}{
			"url":     args[0],
			"quality": quality,
			"format":  format,
			"options": map[string]interface{}{
				"extract_audio":      audioOnly,
				"download_subtitles": subtitles,
				"download_thumbnail": thumbnail,
				"destination_dir":    dest,
			},
		}

		data, _ := json.Marshal(payload)
		resp, err := http.Post(serverURL+"/api/v1/downloads", "application/json", bytes.NewBuffer(data))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusCreated {
			fmt.Fprintf(os.Stderr, "Error: %s\n", string(body))
			os.Exit(1)
		}

		var result map[string]interface{}
		json.Unmarshal(body, &result)
		fmt.Printf("Download accepted!\n")
		fmt.Printf("ID: %s\n", result["id"])
	},
}

var cancelCmd = &cobra.Command{
	Use:   "cancel [url]",
	Short: "Cancel the active download for a URL",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ensureServer()

		data, _ := json.Marshal(map[string]string{"url": args[0]})
		resp, err := http.Post(serverURL+"/api/v1/downloads/cancel", "application/json", bytes.NewBuffer(data))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		var result map[string]interface{}
		json.Unmarshal(body, &result)

		if cancelled, _ := result["cancelled"].(bool); cancelled {
			fmt.Println("Download cancelled")
		} else {
			fmt.Println("No active download for that URL")
		}
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all download jobs",
	Run: func(cmd *cobra.Command, args []string) {
		ensureServer()
		state, _ := cmd.Flags().GetString("state")

		url := serverURL + "/api/v1/downloads"
		if state != "" {
			url += "?state=" + state
		}

		resp, err := http.Get(url)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		var jobs []map[string]interface{}
		json.Unmarshal(body, &jobs)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tURL\tSTATE\tPROGRESS\tCREATED")
		for _, j := range jobs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%.1f%%\t%s\n",
				truncate(stringField(j, "id"), 8),
				truncate(stringField(j, "url"), 40),
				j["state"],
				floatField(j, "last_progress"),
				j["created_at"])
		}
		w.Flush()
	},
}

var getCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Show one download job",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ensureServer()
		resp, err := http.Get(serverURL + "/api/v1/downloads/" + args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusOK {
			fmt.Fprintf(os.Stderr, "Error: %s\n", string(body))
			os.Exit(1)
		}

		var job map[string]interface{}
		json.Unmarshal(body, &job)
		fmt.Printf("ID:       %s\n", job["id"])
		fmt.Printf("URL:      %s\n", job["url"])
		fmt.Printf("State:    %s\n", job["state"])
		fmt.Printf("Progress: %.1f%%\n", floatField(job, "last_progress"))
		if reason := stringField(job, "reason"); reason != "" {
			fmt.Printf("Reason:   %s\n", reason)
		}
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show download statistics",
	Run: func(cmd *cobra.Command, args []string) {
		ensureServer()
		resp, err := http.Get(serverURL + "/api/v1/downloads/stats")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		var stats map[string]interface{}
		json.Unmarshal(body, &stats)

		fmt.Println("Download Statistics:")
		fmt.Printf("  Total:      %v\n", stats["total"])
		fmt.Printf("  Queued:     %v\n", stats["queued"])
		fmt.Printf("  Running:    %v\n", stats["running"])
		fmt.Printf("  Completed:  %v\n", stats["completed"])
		fmt.Printf("  Failed:     %v\n", stats["failed"])
		fmt.Printf("  Cancelled:  %v\n", stats["cancelled"])
	},
}

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install yt-dlp and ffmpeg",
	Run: func(cmd *cobra.Command, args []string) {
		ensureServer()
		resp, err := http.Post(serverURL+"/api/v1/tools/install", "application/json", nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		fmt.Println("Installation started; check `vscraper tools` for state")
	},
}

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Show tool installation states",
	Run: func(cmd *cobra.Command, args []string) {
		ensureServer()
		resp, err := http.Get(serverURL + "/api/v1/tools")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		var states map[string]string
		json.Unmarshal(body, &states)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TOOL\tSTATE")
		for tool, state := range states {
			fmt.Fprintf(w, "%s\t%s\n", tool, state)
		}
		w.Flush()
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the current configuration",
	Run: func(cmd *cobra.Command, args []string) {
		ensureServer()
		resp, err := http.Get(serverURL + "/api/v1/config")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, body, "", "  "); err != nil {
			fmt.Println(string(body))
			return
		}
		fmt.Println(pretty.String())
	},
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func stringField(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func floatField(m map[string]interface{}, key string) float64 {
	if v, ok := m[key].(float64); ok {
		return v
	}
	return 0
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
