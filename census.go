package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultCensusURL  = "https://api.census.gov/data"
	DefaultCensusYear = 2019

	// ACS 5-year variables, see https://api.census.gov/data/2019/acs/acs5/variables.html
	fieldName            = "NAME"
	fieldTotalPopulation = "B01003_001E"
	fieldWhiteAlone      = "B02001_002E"

	fieldState  = "state"
	fieldCounty = "county"
	fieldTract  = "tract"
)

// Jurisdictions lists the FIPS codes of the 50 states and the District of
// Columbia.
var Jurisdictions = []string{
	"01", "02", "04", "05", "06", "08", "09", "10", "11", "12",
	"13", "15", "16", "17", "18", "19", "20", "21", "22", "23",
	"24", "25", "26", "27", "28", "29", "30", "31", "32", "33",
	"34", "35", "36", "37", "38", "39", "40", "41", "42", "44",
	"45", "46", "47", "48", "49", "50", "51", "53", "54", "55",
	"56",
}

type CensusConfig struct {
	BaseURL string        `toml:"url"`
	Key     string        `toml:"key"`
	Year    int           `toml:"year"`
	States  []string      `toml:"states"`
	Workers int           `toml:"workers"`
	Timeout time.Duration `toml:"timeout"`
}

// RaceTract holds the ACS race counts for one tract.
type RaceTract struct {
	Tract            string
	CensusPopulation float64
	White            float64
	NonWhite         float64
	PercentNonWhite  float64
}

func NewRaceTract(tract string, total, white float64) RaceTract {
	nonWhite := total - white
	ratio := math.NaN()
	if total != 0 {
		ratio = nonWhite / total
	}
	return RaceTract{
		Tract:            tract,
		CensusPopulation: total,
		White:            white,
		NonWhite:         nonWhite,
		PercentNonWhite:  ratio,
	}
}

type CensusClient struct {
	cfg    CensusConfig
	http   *http.Client
	logger *zap.Logger
}

func NewCensusClient(cfg CensusConfig, logger *zap.Logger) *CensusClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultCensusURL
	}
	if cfg.Year == 0 {
		cfg.Year = DefaultCensusYear
	}
	if len(cfg.States) == 0 {
		cfg.States = Jurisdictions
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CensusClient{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// FetchRace downloads every configured jurisdiction and concatenates the
// tracts in jurisdiction order. The first failure aborts the download.
func (c *CensusClient) FetchRace(ctx context.Context) ([]RaceTract, error) {
	results := make([][]RaceTract, len(c.cfg.States))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Workers)
	for i, fips := range c.cfg.States {
		i, fips := i, fips
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			tracts, err := c.FetchState(ctx, fips)
			if err != nil {
				return err
			}
			c.logger.Debug("fetched census tracts",
				zap.String("state", fips),
				zap.Int("tracts", len(tracts)))
			results[i] = tracts
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var race []RaceTract
	for _, tracts := range results {
		race = append(race, tracts...)
	}
	return race, nil
}

func (c *CensusClient) FetchState(ctx context.Context, fips string) ([]RaceTract, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.stateURL(fips), nil)
	if err != nil {
		return nil, &RemoteServiceError{State: fips, Err: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &RemoteServiceError{State: fips, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RemoteServiceError{State: fips, Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RemoteServiceError{State: fips, Status: resp.StatusCode, Err: errors.New(snippet(body))}
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}

	var rows [][]*string
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, &RemoteServiceError{State: fips, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}

	tracts, err := parseRaceRows(rows)
	if err != nil {
		return nil, &RemoteServiceError{State: fips, Status: resp.StatusCode, Err: err}
	}
	return tracts, nil
}

func (c *CensusClient) stateURL(fips string) string {
	q := url.Values{}
	q.Set("get", strings.Join([]string{fieldName, fieldTotalPopulation, fieldWhiteAlone}, ","))
	q.Set("for", "tract:*")
	q.Set("in", "state:"+fips+" county:*")
	if c.cfg.Key != "" {
		q.Set("key", c.cfg.Key)
	}
	return fmt.Sprintf("%s/%d/acs/acs5?%s", strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.Year, q.Encode())
}

// parseRaceRows turns the API's header-first table into tracts. The tract id
// is the state, county and tract codes joined as returned.
func parseRaceRows(rows [][]*string) ([]RaceTract, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	header := rows[0]
	col := make(map[string]int, len(header))
	for i, name := range header {
		if name != nil {
			col[*name] = i
		}
	}
	for _, name := range []string{fieldName, fieldTotalPopulation, fieldWhiteAlone, fieldState, fieldCounty, fieldTract} {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("response header lacks %q", name)
		}
	}

	tracts := make([]RaceTract, 0, len(rows)-1)
	for n, row := range rows[1:] {
		if len(row) != len(header) {
			return nil, fmt.Errorf("row %d has %d fields, header has %d", n+1, len(row), len(header))
		}

		total, err := parseCount(cell(row[col[fieldTotalPopulation]]))
		if err != nil {
			return nil, fmt.Errorf("row %d %s: %w", n+1, fieldTotalPopulation, err)
		}
		white, err := parseCount(cell(row[col[fieldWhiteAlone]]))
		if err != nil {
			return nil, fmt.Errorf("row %d %s: %w", n+1, fieldWhiteAlone, err)
		}

		tract := cell(row[col[fieldState]]) + cell(row[col[fieldCounty]]) + cell(row[col[fieldTract]])
		tracts = append(tracts, NewRaceTract(tract, total, white))
	}
	return tracts, nil
}

func cell(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func snippet(body []byte) string {
	const limit = 200
	s := strings.TrimSpace(string(body))
	if len(s) > limit {
		s = s[:limit] + "..."
	}
	if s == "" {
		s = "empty response"
	}
	return s
}
