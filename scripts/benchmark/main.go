// Command benchmark measures scrape latency and metadata coverage of a
// running clipper server.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/alecthomas/kong"

	"github.com/use-agent/clipper/models"
)

// CLI flags
type CLI struct {
	APIURL string `name:"api-url" default:"http://localhost:8080" help:"Clipper API base URL"`
	APIKey string `name:"api-key" help:"API key for authenticated requests"`
	Runs   int    `default:"3" help:"Number of runs per URL for averaging"`
	Output string `default:"benchmark-results.json" help:"JSON output file path"`
}

// Test URLs covering 5 site types.
var testURLs = []struct {
	Label string
	URL   string
}{
	{"Static", "https://example.com"},
	{"Blog", "https://go.dev/blog/go1.21"},
	{"Docs", "https://go.dev/doc/effective_go"},
	{"News", "https://www.bbc.com/news"},
	{"Complex", "https://github.com/golang/go"},
}

// --- Benchmark result types ---

type runResult struct {
	Run           int     `json:"run"`
	LatencyMs     int64   `json:"latency_ms"`
	ContentLength int     `json:"content_length"`
	Coverage      float64 `json:"coverage"` // filled metadata fields / 6
	HTTPStatus    int     `json:"http_status"`
	Success       bool    `json:"success"`
	Error         string  `json:"error,omitempty"`
}

type urlAverages struct {
	LatencyMs     float64 `json:"latency_ms"`
	ContentLength float64 `json:"content_length"`
	Coverage      float64 `json:"coverage"`
}

type urlResult struct {
	URL      string       `json:"url"`
	Label    string       `json:"label"`
	Runs     []runResult  `json:"runs"`
	Averages *urlAverages `json:"averages,omitempty"`
}

type benchmarkReport struct {
	Timestamp  string      `json:"timestamp"`
	APIURL     string      `json:"api_url"`
	RunsPerURL int         `json:"runs_per_url"`
	Results    []urlResult `json:"results"`
}

func main() {
	var cli CLI
	kong.Parse(&cli, kong.Name("benchmark"), kong.Description("Benchmark a running clipper server"))

	fmt.Println("=== Clipper Benchmark Suite ===")
	fmt.Printf("API URL:   %s\n", cli.APIURL)
	fmt.Printf("Runs/URL:  %d\n", cli.Runs)
	fmt.Printf("Output:    %s\n", cli.Output)
	fmt.Println()

	b := &bench{baseURL: cli.APIURL, apiKey: cli.APIKey, client: &http.Client{Timeout: 90 * time.Second}}

	// Quick connectivity check.
	if err := b.checkAPI(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot reach API at %s: %v\n", cli.APIURL, err)
		fmt.Fprintf(os.Stderr, "Make sure clipper is running (e.g. clipper serve)\n")
		os.Exit(1)
	}

	report := benchmarkReport{
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		APIURL:     cli.APIURL,
		RunsPerURL: cli.Runs,
	}

	for _, t := range testURLs {
		fmt.Printf("Benchmarking [%s] %s ...\n", t.Label, t.URL)
		ur := urlResult{URL: t.URL, Label: t.Label}

		for i := 1; i <= cli.Runs; i++ {
			fmt.Printf("  Run %d/%d ... ", i, cli.Runs)
			rr := b.run(t.URL, i)
			if rr.Success {
				fmt.Printf("OK  %dms  %.0f%% metadata\n", rr.LatencyMs, rr.Coverage*100)
			} else {
				fmt.Printf("FAILED: %s\n", rr.Error)
			}
			ur.Runs = append(ur.Runs, rr)
		}

		ur.Averages = computeAverages(ur.Runs)
		report.Results = append(report.Results, ur)
		fmt.Println()
	}

	printTable(os.Stdout, report.Results)

	if err := writeJSON(cli.Output, report); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing JSON output: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nDetailed results written to %s\n", cli.Output)
}

type bench struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func (b *bench) checkAPI() error {
	resp, err := b.client.Get(b.baseURL + "/api/health")
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health returned %d", resp.StatusCode)
	}
	return nil
}

// run scrapes url once with refresh set, so every run hits the pipeline.
func (b *bench) run(url string, run int) runResult {
	rr := runResult{Run: run}

	bodyBytes, err := json.Marshal(models.ScrapeRequest{URL: url, Refresh: true})
	if err != nil {
		rr.Error = fmt.Sprintf("marshal error: %v", err)
		return rr
	}

	req, err := http.NewRequest(http.MethodPost, b.baseURL+"/api/scrape", bytes.NewReader(bodyBytes))
	if err != nil {
		rr.Error = fmt.Sprintf("request error: %v", err)
		return rr
	}
	req.Header.Set("Content-Type", "application/json")
	if b.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+b.apiKey)
	}

	start := time.Now()
	resp, err := b.client.Do(req)
	if err != nil {
		rr.Error = fmt.Sprintf("request failed: %v", err)
		return rr
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	rr.LatencyMs = time.Since(start).Milliseconds()
	rr.HTTPStatus = resp.StatusCode
	if err != nil {
		rr.Error = fmt.Sprintf("read error: %v", err)
		return rr
	}

	if resp.StatusCode != http.StatusOK {
		var e models.ErrorResponse
		if json.Unmarshal(body, &e) == nil && e.Error != nil {
			rr.Error = fmt.Sprintf("[%s] %s", e.Error.Code, e.Error.Message)
		} else {
			rr.Error = fmt.Sprintf("HTTP %d", resp.StatusCode)
		}
		return rr
	}

	var rec models.Content
	if err := json.Unmarshal(body, &rec); err != nil {
		rr.Error = fmt.Sprintf("decode error: %v", err)
		return rr
	}

	rr.Success = true
	rr.ContentLength = len(rec.Content)
	rr.Coverage = coverage(&rec)
	return rr
}

// coverage is the fraction of metadata fields the pipeline filled.
func coverage(rec *models.Content) float64 {
	fields := []string{rec.Title, rec.Description, rec.Author, rec.PublishDate, rec.SiteName, rec.HeaderImage}
	filled := 0
	for _, f := range fields {
		if f != "" {
			filled++
		}
	}
	return float64(filled) / float64(len(fields))
}

func computeAverages(runs []runResult) *urlAverages {
	var successCount int
	var avg urlAverages

	for _, r := range runs {
		if !r.Success {
			continue
		}
		successCount++
		avg.LatencyMs += float64(r.LatencyMs)
		avg.ContentLength += float64(r.ContentLength)
		avg.Coverage += r.Coverage
	}

	if successCount == 0 {
		return nil
	}

	n := float64(successCount)
	avg.LatencyMs /= n
	avg.ContentLength /= n
	avg.Coverage /= n
	return &avg
}

func printTable(out io.Writer, results []urlResult) {
	fmt.Fprintln(out, strings.Repeat("─", 72))
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "URL\tAvg Latency\tMetadata\tContent Len\n")
	fmt.Fprintf(w, "───\t───────────\t────────\t───────────\n")

	for _, r := range results {
		if r.Averages == nil {
			fmt.Fprintf(w, "%s\tFAILED\t-\t-\n", truncateURL(r.URL, 40))
			continue
		}
		fmt.Fprintf(w, "%s\t%dms\t%.0f%%\t%s\n",
			truncateURL(r.URL, 40),
			int64(r.Averages.LatencyMs),
			r.Averages.Coverage*100,
			formatInt(int(r.Averages.ContentLength)),
		)
	}

	w.Flush()
	fmt.Fprintln(out, strings.Repeat("─", 72))
}

func truncateURL(u string, max int) string {
	if len(u) <= max {
		return u
	}
	return u[:max-3] + "..."
}

func formatInt(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var result []byte
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, byte(c))
	}
	return string(result)
}

func writeJSON(path string, report benchmarkReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
