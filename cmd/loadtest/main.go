// Command loadtest fires simultaneous booking requests for one slot at a
// running server and reports how they were answered.  It then reads the
// space's reservations back and fails if the CONFIRMED party sizes
// overlapping the slot exceed the space's capacity.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
)

type options struct {
	BaseURL     string
	SpaceID     uint64
	Date        string
	Start       string
	PartySize   int
	Requests    int
	Concurrency int
	Timeout     time.Duration
}

type report struct {
	ByStatus    map[int]int
	Confirmed   int // CONFIRMED party size overlapping the slot, read back
	MaxCapacity int
}

func (r report) overbooked() bool { return r.Confirmed > r.MaxCapacity }

func main() {
	if err := runMain(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func runMain() error {
	var opts options
	flagSet := pflag.NewFlagSet("loadtest", pflag.ContinueOnError)
	flagSet.StringVar(&opts.BaseURL, "url", "http://localhost:8080", "server base URL")
	flagSet.Uint64Var(&opts.SpaceID, "space", 1, "space id to book")
	flagSet.StringVar(&opts.Date, "date", time.Now().AddDate(0, 0, 7).Format("2006-01-02"), "reservation date (YYYY-MM-DD)")
	flagSet.StringVar(&opts.Start, "start", "19:30", "slot start time (HH:MM)")
	flagSet.IntVarP(&opts.PartySize, "party", "p", 3, "party size of every request")
	flagSet.IntVarP(&opts.Requests, "requests", "n", 10, "number of booking requests")
	flagSet.IntVarP(&opts.Concurrency, "concurrency", "c", 0, "requests in flight at once (0 = all)")
	flagSet.DurationVar(&opts.Timeout, "timeout", 30*time.Second, "overall deadline")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
	defer cancel()

	rep, err := run(ctx, http.DefaultClient, opts)
	if err != nil {
		return err
	}
	codes := make([]int, 0, len(rep.ByStatus))
	for code := range rep.ByStatus {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	for _, code := range codes {
		fmt.Printf("%d %s: %d\n", code, http.StatusText(code), rep.ByStatus[code])
	}
	fmt.Printf("confirmed party size in slot: %d / %d\n", rep.Confirmed, rep.MaxCapacity)
	if rep.overbooked() {
		return fmt.Errorf("slot overbooked: %d > %d", rep.Confirmed, rep.MaxCapacity)
	}
	return nil
}

func run(ctx context.Context, client *http.Client, opts options) (report, error) {
	base := strings.TrimRight(opts.BaseURL, "/")
	body, err := json.Marshal(map[string]any{
		"date":           opts.Date,
		"start_time":     opts.Start,
		"party_size":     opts.PartySize,
		"customer_name":  "Load Test",
		"customer_email": "loadtest@example.com",
	})
	if err != nil {
		return report{}, err
	}

	rep := report{ByStatus: map[int]int{}}
	var mu sync.Mutex
	start := make(chan struct{})

	g, gctx := errgroup.WithContext(ctx)
	// Without a limit every request waits on start so they all leave
	// together.  With a limit g.Go blocks, so the gate opens up front.
	if opts.Concurrency > 0 {
		g.SetLimit(opts.Concurrency)
		close(start)
	}
	url := fmt.Sprintf("%s/v1/spaces/%d/reservations", base, opts.SpaceID)
	for i := 0; i < opts.Requests; i++ {
		g.Go(func() error {
			<-start
			req, err := http.NewRequestWithContext(gctx, http.MethodPost, url, bytes.NewReader(body))
			if err != nil {
				return err
			}
			req.Header.Set("Content-Type", "application/json")
			resp, err := client.Do(req)
			if err != nil {
				return fmt.Errorf("post: %w", err)
			}
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
			mu.Lock()
			rep.ByStatus[resp.StatusCode]++
			mu.Unlock()
			return nil
		})
	}
	if opts.Concurrency <= 0 {
		close(start)
	}
	if err := g.Wait(); err != nil {
		return rep, err
	}

	confirmed, maxCapacity, err := readBack(ctx, client, base, opts)
	if err != nil {
		return rep, err
	}
	rep.Confirmed, rep.MaxCapacity = confirmed, maxCapacity
	return rep, nil
}

// readBack sums CONFIRMED party sizes whose window contains the slot
// start and returns them with the space's capacity.
func readBack(ctx context.Context, client *http.Client, base string, opts options) (int, int, error) {
	var space struct {
		MaxCapacity int `json:"max_capacity"`
	}
	if err := getJSON(ctx, client, fmt.Sprintf("%s/v1/spaces/%d", base, opts.SpaceID), &space); err != nil {
		return 0, 0, err
	}
	var list struct {
		Items []struct {
			StartTime string `json:"start_time"`
			EndTime   string `json:"end_time"`
			PartySize int    `json:"party_size"`
			Status    string `json:"status"`
		} `json:"items"`
	}
	if err := getJSON(ctx, client, fmt.Sprintf("%s/v1/spaces/%d/reservations?date=%s", base, opts.SpaceID, opts.Date), &list); err != nil {
		return 0, 0, err
	}
	total := 0
	for _, r := range list.Items {
		// HH:MM strings compare in clock order.
		if r.Status == "CONFIRMED" && r.StartTime <= opts.Start && opts.Start < r.EndTime {
			total += r.PartySize
		}
	}
	return total, space.MaxCapacity, nil
}

func getJSON(ctx context.Context, client *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: %s", url, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
