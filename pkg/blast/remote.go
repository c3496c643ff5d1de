package blast

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/andrew-torda/homologs/pkg/logger"
)

// DefaultURL is the NCBI BLAST URL API.
const DefaultURL = "https://blast.ncbi.nlm.nih.gov/blast/Blast.cgi"

// Remote defaults.
const (
	DefaultPollInterval = 10 * time.Second
	DefaultMaxPolls     = 360
	defaultDescriptions = 500
)

var (
	ridRe    = regexp.MustCompile(`(?m)^\s*RID = (\S+)`)
	statusRe = regexp.MustCompile(`QBlastInfoBegin\s+Status=(\w+)`)
)

// Remote submits searches to the NCBI web service and polls until the
// result is ready.
type Remote struct {
	URL          string
	Database     string // "swissprot" if empty
	HitList      int    // hits to ask for
	EValue       float64
	PollInterval time.Duration
	MaxPolls     int // give up after this many WAITING answers
	Client       *http.Client
	Log          logger.Logger
}

func (r *Remote) client() *http.Client {
	if r.Client == nil {
		return http.DefaultClient
	}
	return r.Client
}

func (r *Remote) log() logger.Logger {
	if r.Log == nil {
		return logger.Discard()
	}
	return r.Log
}

func (r *Remote) url() string {
	if r.URL == "" {
		return DefaultURL
	}
	return r.URL
}

// do sends a request and returns the body of a 200 answer.
func (r *Remote) do(req *http.Request) ([]byte, error) {
	resp, err := r.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRemote, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %w", ErrRemote, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: http status %s", ErrRemote, resp.Status)
	}
	return body, nil
}

// put submits the query and returns the request id.
func (r *Remote) put(ctx context.Context, query []byte) (string, error) {
	db := r.Database
	if db == "" {
		db = "swissprot"
	}
	form := url.Values{
		"CMD":          {"Put"},
		"PROGRAM":      {"blastp"},
		"DATABASE":     {db},
		"QUERY":        {string(query)},
		"HITLIST_SIZE": {strconv.Itoa(r.HitList)},
		"FILTER":       {"L"},
		"EXPECT":       {strconv.FormatFloat(r.EValue, 'g', -1, 64)},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url(),
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	body, err := r.do(req)
	if err != nil {
		return "", err
	}
	m := ridRe.FindSubmatch(body)
	if m == nil {
		return "", ErrNoRID
	}
	return string(m[1]), nil
}

// get asks once for the result. done is false while the search is
// still running.
func (r *Remote) get(ctx context.Context, rid string) (body []byte, done bool, err error) {
	q := url.Values{
		"CMD":            {"Get"},
		"RID":            {rid},
		"FORMAT_TYPE":    {"XML"},
		"DESCRIPTIONS":   {strconv.Itoa(defaultDescriptions)},
		"ALIGNMENTS":     {strconv.Itoa(r.HitList)},
		"ALIGNMENT_TYPE": {"Pairwise"},
		"OVERVIEW":       {"no"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url()+"?"+q.Encode(), nil)
	if err != nil {
		return nil, false, fmt.Errorf("creating request: %w", err)
	}
	if body, err = r.do(req); err != nil {
		return nil, false, err
	}
	m := statusRe.FindSubmatch(body)
	if m == nil {
		return body, true, nil
	}
	switch status := string(m[1]); status {
	case "WAITING":
		return nil, false, nil
	case "READY":
		return body, true, nil
	default:
		return nil, false, fmt.Errorf("%w: rid %s status %s", ErrRemote, rid, status)
	}
}

// Run submits the query, then waits PollInterval between each request
// for the result.
func (r *Remote) Run(ctx context.Context, query []byte) ([]byte, error) {
	rid, err := r.put(ctx, query)
	if err != nil {
		return nil, err
	}
	r.log().Info(ctx, "submitted remote search", logger.String("rid", rid))

	interval := r.PollInterval
	maxPolls := r.MaxPolls
	if maxPolls <= 0 {
		maxPolls = DefaultMaxPolls
	}
	timer := time.NewTimer(interval)
	defer timer.Stop()
	for poll := 1; poll <= maxPolls; poll++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
		body, done, err := r.get(ctx, rid)
		if err != nil {
			return nil, err
		}
		if done {
			r.log().Debug(ctx, "remote search done", logger.String("rid", rid),
				logger.Int("polls", poll))
			return body, nil
		}
		timer.Reset(interval)
	}
	return nil, fmt.Errorf("%w: rid %s after %d polls", ErrPollLimit, rid, maxPolls)
}
