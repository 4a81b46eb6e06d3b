package compliance

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nexsupply/nexi/pkg/domain"
)

// ErrNoDataset is returned by Load when none of the paths exist.
var ErrNoDataset = errors.New("no blacklist dataset found")

// Load reads the first existing file among paths, so a JSON export can
// take precedence over a legacy CSV file.
func Load(paths ...string) ([]domain.BlacklistEntry, error) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return LoadFile(p)
	}
	return nil, fmt.Errorf("%w (tried %s)", ErrNoDataset, strings.Join(paths, ", "))
}

// LoadFile reads a blacklist in JSON or CSV form. The format is taken from
// the extension, or sniffed when the extension is neither.
func LoadFile(path string) ([]domain.BlacklistEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read blacklist %s: %w", path, err)
	}

	var entries []domain.BlacklistEntry
	switch ext := strings.ToLower(filepath.Ext(path)); {
	case ext == ".json":
		entries, err = ParseJSON(data)
	case ext == ".csv":
		entries, err = ParseCSV(bytes.NewReader(data))
	case bytes.HasPrefix(bytes.TrimSpace(data), []byte("[")):
		entries, err = ParseJSON(data)
	default:
		entries, err = ParseCSV(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse blacklist %s: %w", path, err)
	}
	return entries, nil
}

type jsonEntry struct {
	SupplierID       string   `json:"supplier_id"`
	CompanyName      string   `json:"company_name"`
	RiskScore        *float64 `json:"risk_score"`
	ExpertRiskScore  *float64 `json:"expert_initial_risk_score"`
	Note             string   `json:"note"`
	ExpertNoteLegacy string   `json:"expert_qualitative_note"`
}

// ParseJSON decodes an array of entries. Missing supplier ids are
// generated from the position (WEB_S000000, WEB_S000001, ...); the expert
// fields stand in for a missing score or note.
func ParseJSON(data []byte) ([]domain.BlacklistEntry, error) {
	var raw []jsonEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	out := make([]domain.BlacklistEntry, 0, len(raw))
	for i, r := range raw {
		e := domain.BlacklistEntry{
			SupplierID:  strings.TrimSpace(r.SupplierID),
			CompanyName: strings.TrimSpace(r.CompanyName),
			Note:        r.Note,
		}
		if e.SupplierID == "" {
			e.SupplierID = fmt.Sprintf("WEB_S%06d", i)
		}
		switch {
		case r.RiskScore != nil:
			e.RiskScore = *r.RiskScore
		case r.ExpertRiskScore != nil:
			e.RiskScore = *r.ExpertRiskScore
		}
		if e.Note == "" {
			e.Note = r.ExpertNoteLegacy
		}
		out = append(out, e)
	}
	return out, nil
}

// ParseCSV decodes supplier_id,company_name,risk_score,note rows after a
// header line. Notes may be quoted and contain commas; rows with fewer
// than four fields are skipped.
func ParseCSV(r io.Reader) ([]domain.BlacklistEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	var out []domain.BlacklistEntry
	for line := 0; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if line == 0 || len(rec) < 4 {
			continue
		}
		score, _ := strconv.ParseFloat(strings.TrimSpace(rec[2]), 64)
		out = append(out, domain.BlacklistEntry{
			SupplierID:  strings.TrimSpace(rec[0]),
			CompanyName: strings.TrimSpace(rec[1]),
			RiskScore:   score,
			Note:        strings.TrimSpace(rec[3]),
		})
	}
	return out, nil
}
