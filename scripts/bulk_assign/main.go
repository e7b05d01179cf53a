// Command bulk_assign runs the automatic coverage engine over every pending
// duty slot in a date range by calling a running API instance. Intended for
// weekly planning: open the week's slots, then let this fill them in one go.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

type dutySlot struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Category  string `json:"category"`
	Status    string `json:"status"`
}

type listEnvelope struct {
	Data []dutySlot `json:"data"`
	Pagination *struct {
		Page       int `json:"page"`
		PageSize   int `json:"page_size"`
		TotalCount int `json:"total_count"`
	} `json:"pagination"`
}

type assignEnvelope struct {
	Data []struct {
		StaffID      string `json:"staff_id"`
		PriorityTier int    `json:"priority_tier"`
		Reason       string `json:"reason"`
	} `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func main() {
	var (
		base    string
		termID  string
		from    string
		to      string
		timeout time.Duration
	)

	flag.StringVar(&base, "base", "http://localhost:8080", "API base URL")
	flag.StringVar(&termID, "term", "", "Term ID (empty uses the active term)")
	flag.StringVar(&from, "from", time.Now().Format("2006-01-02"), "Range start (YYYY-MM-DD)")
	flag.StringVar(&to, "to", time.Now().AddDate(0, 0, 7).Format("2006-01-02"), "Range end (YYYY-MM-DD)")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "HTTP client timeout")
	flag.Parse()

	client := &http.Client{Timeout: timeout}

	duties, err := listPending(client, base, from, to)
	if err != nil {
		log.Fatalf("failed to list pending duties: %v", err)
	}
	if len(duties) == 0 {
		fmt.Println("No pending duties in range.")
		return
	}

	var covered, uncovered, failed int
	for _, duty := range duties {
		assigned, err := assign(client, base, duty.ID, termID)
		switch {
		case err != nil:
			failed++
			fmt.Printf("[FAIL] %s %s %s-%s (%s): %v\n", duty.Date, duty.Category, duty.StartTime, duty.EndTime, duty.ID, err)
		case assigned == 0:
			uncovered++
			fmt.Printf("[OPEN] %s %s %s-%s (%s): no eligible staff\n", duty.Date, duty.Category, duty.StartTime, duty.EndTime, duty.ID)
		default:
			covered++
			fmt.Printf("[OK]   %s %s %s-%s (%s): %d assigned\n", duty.Date, duty.Category, duty.StartTime, duty.EndTime, duty.ID, assigned)
		}
	}

	fmt.Printf("\nCovered: %d, Uncovered: %d, Failed: %d\n", covered, uncovered, failed)
	if failed > 0 {
		os.Exit(1)
	}
}

func listPending(client *http.Client, base, from, to string) ([]dutySlot, error) {
	var all []dutySlot
	page := 1
	for {
		query := url.Values{}
		query.Set("status", "PENDING")
		query.Set("from", from)
		query.Set("to", to)
		query.Set("page", fmt.Sprintf("%d", page))
		query.Set("limit", "100")

		body, err := get(client, fmt.Sprintf("%s/api/v1/duties?%s", strings.TrimRight(base, "/"), query.Encode()))
		if err != nil {
			return nil, err
		}
		var envelope listEnvelope
		if err := json.Unmarshal(body, &envelope); err != nil {
			return nil, fmt.Errorf("decode duty list: %w", err)
		}
		all = append(all, envelope.Data...)

		if envelope.Pagination == nil || len(all) >= envelope.Pagination.TotalCount || len(envelope.Data) == 0 {
			return all, nil
		}
		page++
	}
}

func assign(client *http.Client, base, dutyID, termID string) (int, error) {
	endpoint := fmt.Sprintf("%s/api/v1/duties/%s/assign", strings.TrimRight(base, "/"), dutyID)
	if termID != "" {
		endpoint += "?term_id=" + url.QueryEscape(termID)
	}

	resp, err := client.Post(endpoint, "application/json", nil)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("read response: %w", err)
	}

	var envelope assignEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}
	if envelope.Error != nil {
		return 0, fmt.Errorf("%s: %s", envelope.Error.Code, envelope.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return len(envelope.Data), nil
}

func get(client *http.Client, endpoint string) ([]byte, error) {
	resp, err := client.Get(endpoint)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
